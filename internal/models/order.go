package models

import "github.com/shopspring/decimal"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// PaymentMethod is how the shopper pays for an order.
type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "COD"
	PaymentCard PaymentMethod = "CARD"
)

// PaymentStatus tracks a payment record.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Order belongs to one user and one vendor.
type Order struct {
	Base
	UserID        string          `json:"userId" gorm:"index;type:varchar(36)"`
	User          *User           `json:"user,omitempty"`
	VendorID      string          `json:"vendorId" gorm:"index;type:varchar(36)"`
	Vendor        *Vendor         `json:"vendor,omitempty"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	Address       string          `json:"address" gorm:"type:text"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(10)"`
	PromoCode     string          `json:"promoCode,omitempty" gorm:"type:varchar(50)"`
	GiftCard      string          `json:"giftCard,omitempty" gorm:"type:varchar(50)"`
	Status        OrderStatus     `json:"status" gorm:"index;type:varchar(20)"`
	Items         []OrderItem     `json:"items"`
	Otp           *OrderOtp       `json:"otp,omitempty"`
	Payment       *Payment        `json:"payment,omitempty"`
}

// OrderItem snapshots the price paid for a variant.
type OrderItem struct {
	Base
	OrderID   string          `json:"orderId" gorm:"index;type:varchar(36)"`
	ProductID string          `json:"productId" gorm:"index;type:varchar(36)"`
	Product   *Product        `json:"product,omitempty"`
	VariantID string          `json:"variantId" gorm:"index;type:varchar(36)"`
	Variant   *ProductVariant `json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderOtp holds the delivery code of an order.
type OrderOtp struct {
	Base
	OrderID  string `json:"orderId" gorm:"uniqueIndex;type:varchar(36)"`
	Code     string `json:"code,omitempty" gorm:"type:varchar(12)"`
	Verified bool   `json:"verified"`
}

// Payment records money collected for an order, by the card processor or on delivery.
type Payment struct {
	Base
	OrderID    string          `json:"orderId" gorm:"uniqueIndex;type:varchar(36)"`
	Provider   string          `json:"provider" gorm:"type:varchar(20)"`
	Method     PaymentMethod   `json:"method" gorm:"type:varchar(10)"`
	ExternalID string          `json:"externalId,omitempty" gorm:"index;type:varchar(100)"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Currency   string          `json:"currency" gorm:"type:varchar(3)"`
	Status     PaymentStatus   `json:"status" gorm:"type:varchar(20)"`
}
