package repositories

import (
	"context"
	"fmt"

	"pasar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistRepository defines the interface for wishlist access.
type WishlistRepository interface {
	List(ctx context.Context, userID string) ([]models.WishlistItem, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	Toggle(ctx context.Context, userID, productID string) (bool, error)
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

// List returns the wishlist of a user with its products.
func (r *GORMWishlistRepository) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product.Variants").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}

// Add is idempotent.
func (r *GORMWishlistRepository) Add(ctx context.Context, userID, productID string) error {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}}, DoNothing: true}).
		Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

// Remove deletes a product from the wishlist.
func (r *GORMWishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("wishlist item %s: %w", productID, ErrNotFound)
	}
	return nil
}

// Toggle deletes the pair when present and creates it otherwise. It reports
// whether the product is in the wishlist afterwards.
func (r *GORMWishlistRepository) Toggle(ctx context.Context, userID, productID string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		added = true
		return tx.Create(&models.WishlistItem{UserID: userID, ProductID: productID}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle wishlist item: %w", err)
	}
	return added, nil
}
