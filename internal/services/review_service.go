package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

// ReviewService records product reviews from customers who received the product.
type ReviewService struct {
	reviews       repositories.ReviewRepository
	products      repositories.ProductRepository
	orders        repositories.OrderRepository
	notifications repositories.NotificationRepository
}

// NewReviewService creates a new instance of ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, products repositories.ProductRepository,
	orders repositories.OrderRepository, notifications repositories.NotificationRepository) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, orders: orders, notifications: notifications}
}

// Create stores the user's only review of a product.
func (s *ReviewService) Create(ctx context.Context, userID, productID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, domainErr(err)
	}
	delivered, err := s.orders.HasDeliveredProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		return nil, fmt.Errorf("%w: only customers who received the product can review it", ErrForbidden)
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, domainErr(err)
	}

	err = s.notifications.Create(ctx, &models.Notification{
		RecipientRole: models.RoleVendor,
		RecipientID:   product.VendorID,
		Type:          models.NotifyNewReview,
		Content:       fmt.Sprintf("New %d-star review on %s", rating, product.Name),
	})
	if err != nil {
		log.Printf("Failed to notify vendor %s of review %s: %v", product.VendorID, review.ID, err)
	}
	return review, nil
}

// ListByProduct returns the reviews of a product.
func (s *ReviewService) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}
