package repositories

import (
	"context"
	"fmt"

	"pasar/internal/models"

	"gorm.io/gorm"
)

// RatingSummary is the average rating of a product.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ReviewRepository defines the interface for product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	ListByVendor(ctx context.Context, vendorID string) ([]models.Review, error)
	Summary(ctx context.Context, productID string) (RatingSummary, error)
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Create adds a new review.
func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", translate(err))
	}
	return nil
}

// ListByProduct returns the reviews of a product, newest first.
func (r *GORMReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ListByVendor returns the reviews of all products of a vendor.
func (r *GORMReviewRepository) ListByVendor(ctx context.Context, vendorID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Product").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.vendor_id = ?", vendorID).
		Order("reviews.created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor reviews: %w", err)
	}
	return reviews, nil
}

// Summary returns the review count and average rating of a product.
func (r *GORMReviewRepository) Summary(ctx context.Context, productID string) (RatingSummary, error) {
	var summary RatingSummary
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&summary).Error
	if err != nil {
		return RatingSummary{}, fmt.Errorf("failed to summarise ratings: %w", err)
	}
	return summary, nil
}
