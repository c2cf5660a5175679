package models

// CartItem is one (product, variant) line of a user's cart.
type CartItem struct {
	Base
	UserID    string          `json:"userId" gorm:"uniqueIndex:idx_cart_line;type:varchar(36)"`
	ProductID string          `json:"productId" gorm:"uniqueIndex:idx_cart_line;type:varchar(36)"`
	Product   *Product        `json:"product,omitempty"`
	VariantID string          `json:"variantId" gorm:"uniqueIndex:idx_cart_line;type:varchar(36)"`
	Variant   *ProductVariant `json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
}

// WishlistItem marks a product saved by a user.
type WishlistItem struct {
	Base
	UserID    string   `json:"userId" gorm:"uniqueIndex:idx_wishlist_line;type:varchar(36)"`
	ProductID string   `json:"productId" gorm:"uniqueIndex:idx_wishlist_line;type:varchar(36)"`
	Product   *Product `json:"product,omitempty"`
}
