package repositories

import (
	"context"

	"pasar/internal/models"
)

// ProductFilter narrows the customer-facing product listing.
type ProductFilter struct {
	Query    string
	Category string
	ShopID   string
	VendorID string
	Limit    int
	Offset   int
}

// ProductRepository defines the interface for product and variant data access.
type ProductRepository interface {
	Search(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	ListByVendor(ctx context.Context, vendorID string) ([]models.Product, error)
	CountByVendor(ctx context.Context, vendorID string) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, vendorID, id string) error
	GetVariant(ctx context.Context, id string) (*models.ProductVariant, error)
	GetVariants(ctx context.Context, ids []string) ([]models.ProductVariant, error)
	CreateVariant(ctx context.Context, variant *models.ProductVariant) error
	UpdateVariant(ctx context.Context, variant *models.ProductVariant) error
}
