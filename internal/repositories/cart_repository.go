package repositories

import (
	"context"
	"fmt"
	"time"

	"pasar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines the interface for cart line access.
type CartRepository interface {
	List(ctx context.Context, userID string) ([]models.CartItem, error)
	Increment(ctx context.Context, userID, productID, variantID string) error
	SetQuantity(ctx context.Context, userID, productID, variantID string, quantity int) error
	Remove(ctx context.Context, userID, productID, variantID string) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// List returns the cart items of a user with their products.
func (r *GORMCartRepository) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Variant").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

// Increment inserts the line with quantity 1 or adds 1 to the existing line.
func (r *GORMCartRepository) Increment(ctx context.Context, userID, productID, variantID string) error {
	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  1,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", 1),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// SetQuantity changes the quantity of a cart line.
func (r *GORMCartRepository) SetQuantity(ctx context.Context, userID, productID, variantID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ? AND variant_id = ?", userID, productID, variantID).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s/%s: %w", productID, variantID, ErrNotFound)
	}
	return nil
}

// Remove deletes a cart line.
func (r *GORMCartRepository) Remove(ctx context.Context, userID, productID, variantID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND variant_id = ?", userID, productID, variantID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s/%s: %w", productID, variantID, ErrNotFound)
	}
	return nil
}
