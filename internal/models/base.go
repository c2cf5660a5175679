package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identifier and timestamps shared by every table.
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not pick one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Vendor{},
		&Address{},
		&Shop{},
		&Category{},
		&Product{},
		&ProductVariant{},
		&CartItem{},
		&WishlistItem{},
		&Order{},
		&OrderItem{},
		&OrderOtp{},
		&Payment{},
		&Chat{},
		&Message{},
		&Notification{},
		&Review{},
	}
}
