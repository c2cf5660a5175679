package models

// Chat is the single conversation between a user and a vendor.
type Chat struct {
	Base
	UserID   string    `json:"userId" gorm:"uniqueIndex:idx_chat_pair;type:varchar(36)"`
	User     *User     `json:"user,omitempty"`
	VendorID string    `json:"vendorId" gorm:"uniqueIndex:idx_chat_pair;type:varchar(36)"`
	Vendor   *Vendor   `json:"vendor,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Message is one chat line.
type Message struct {
	Base
	ChatID     string `json:"chatId" gorm:"index;type:varchar(36)"`
	SenderRole Role   `json:"senderRole" gorm:"type:varchar(10)"`
	SenderID   string `json:"senderId" gorm:"type:varchar(36)"`
	Content    string `json:"content" gorm:"type:text"`
}

// NotificationType classifies a notification.
type NotificationType string

const (
	NotifyOrderPlaced    NotificationType = "ORDER_PLACED"
	NotifyOrderCancelled NotificationType = "ORDER_CANCELLED"
	NotifyOrderDelivered NotificationType = "ORDER_DELIVERED"
	NotifyOrderStatus    NotificationType = "ORDER_STATUS"
	NotifyPaymentPaid    NotificationType = "PAYMENT_RECEIVED"
	NotifyNewReview      NotificationType = "NEW_REVIEW"
)

// Notification is a one-way message to a user or a vendor.
type Notification struct {
	Base
	RecipientRole Role             `json:"recipientRole" gorm:"index:idx_notification_recipient;type:varchar(10)"`
	RecipientID   string           `json:"recipientId" gorm:"index:idx_notification_recipient;type:varchar(36)"`
	Type          NotificationType `json:"type" gorm:"type:varchar(30)"`
	Content       string           `json:"content" gorm:"type:text"`
	Read          bool             `json:"read" gorm:"column:is_read"`
}
