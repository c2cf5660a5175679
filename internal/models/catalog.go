package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InOrderState marks whether a variant is shown in customer listings.
//
// A variant is RESERVED once an order takes its last unit and RESTORED when a
// cancellation puts stock back; only RESERVED variants are hidden.
type InOrderState int

const (
	InOrderAvailable InOrderState = 0
	InOrderReserved  InOrderState = 1
	InOrderRestored  InOrderState = 2
)

// Shop is a storefront owned by a Vendor.
type Shop struct {
	Base
	VendorID    string    `json:"vendorId" gorm:"index;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(150)"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	LogoURL     string    `json:"logoUrl,omitempty" gorm:"type:varchar(500)"`
	Products    []Product `json:"products,omitempty"`
}

// Category groups products for browsing.
type Category struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(100)"`
	Slug string `json:"slug" gorm:"index;type:varchar(120)"`
}

// Product is a listing; the purchasable unit is one of its variants.
type Product struct {
	Base
	VendorID    string           `json:"vendorId" gorm:"index;type:varchar(36)"`
	ShopID      string           `json:"shopId" gorm:"index;type:varchar(36)"`
	Shop        *Shop            `json:"shop,omitempty"`
	CategoryID  *string          `json:"categoryId,omitempty" gorm:"index;type:varchar(36)"`
	Category    *Category        `json:"category,omitempty"`
	Name        string           `json:"name" gorm:"type:varchar(200)"`
	Description string           `json:"description,omitempty" gorm:"type:text"`
	Images      []string         `json:"images" gorm:"type:text;serializer:json"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	DeletedAt   gorm.DeletedAt   `json:"-" gorm:"index"`
}

// ProductVariant is a size/colour/SKU of a product with its own price and stock.
type ProductVariant struct {
	Base
	ProductID string          `json:"productId" gorm:"index;type:varchar(36)"`
	Product   *Product        `json:"product,omitempty"`
	Name      string          `json:"name" gorm:"type:varchar(150)"`
	SKU       string          `json:"sku,omitempty" gorm:"type:varchar(100)"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Stock     int             `json:"stock"`
	InOrder   InOrderState    `json:"inOrder" gorm:"default:0"`
}

// Review is a user's rating of a product.
type Review struct {
	Base
	ProductID string   `json:"productId" gorm:"uniqueIndex:idx_review_author;type:varchar(36)"`
	Product   *Product `json:"product,omitempty"`
	UserID    string   `json:"userId" gorm:"uniqueIndex:idx_review_author;type:varchar(36)"`
	User      *User    `json:"user,omitempty"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment,omitempty" gorm:"type:text"`
}
