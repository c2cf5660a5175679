package repositories

import (
	"context"
	"time"

	"pasar/internal/models"

	"github.com/shopspring/decimal"
)

// CustomerSummary aggregates one shopper's orders with a vendor.
type CustomerSummary struct {
	UserID     string          `json:"userId"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	OrderCount int64           `json:"orders"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateOrders reserves stock, persists the orders with their items and OTPs,
	// clears the ordered cart lines and stores the notifications, all or nothing.
	CreateOrders(ctx context.Context, orders []*models.Order, notifications []*models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListByVendor(ctx context.Context, vendorID string, status models.OrderStatus) ([]models.Order, error)
	ListByVendorBetween(ctx context.Context, vendorID string, from, to time.Time) ([]models.Order, error)
	// ConfirmDelivery consumes the OTP and marks the order delivered; payment may be nil.
	ConfirmDelivery(ctx context.Context, orderID string, payment *models.Payment, notification *models.Notification) error
	// Cancel restores stock of every item and marks the order cancelled.
	Cancel(ctx context.Context, orderID string, notification *models.Notification) error
	UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus, notification *models.Notification) error
	Customers(ctx context.Context, vendorID string) ([]CustomerSummary, error)
	HasDeliveredProduct(ctx context.Context, userID, productID string) (bool, error)
}
