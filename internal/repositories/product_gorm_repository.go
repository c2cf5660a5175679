package repositories

import (
	"context"
	"fmt"
	"strings"

	"pasar/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Search lists products that still have at least one variant outside an order
// reservation, newest first.
func (r *GORMProductRepository) Search(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.in_order <> ?)", models.InOrderReserved).
		Preload("Variants", "in_order <> ?", models.InOrderReserved).
		Preload("Category").
		Preload("Shop")

	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", like, like)
	}
	if filter.Category != "" {
		q = q.Where("products.category_id IN (SELECT id FROM categories WHERE id = ? OR slug = ?)", filter.Category, filter.Category)
	}
	if filter.ShopID != "" {
		q = q.Where("products.shop_id = ?", filter.ShopID)
	}
	if filter.VendorID != "" {
		q = q.Where("products.vendor_id = ?", filter.VendorID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var products []models.Product
	if err := q.Order("products.created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product with all of its variants.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Category").
		Preload("Shop").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("product with ID %s: %w", id, translate(err))
	}
	return &product, nil
}

// ListByVendor returns all products of a vendor.
func (r *GORMProductRepository) ListByVendor(ctx context.Context, vendorID string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("Category").
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor products: %w", err)
	}
	return products, nil
}

// CountByVendor counts the products of a vendor.
func (r *GORMProductRepository) CountByVendor(ctx context.Context, vendorID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("vendor_id = ?", vendorID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count vendor products: %w", err)
	}
	return count, nil
}

// Create creates a product together with its variants.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Update changes the listing fields of a product owned by product.VendorID.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND vendor_id = ?", product.ID, product.VendorID).
		Select("name", "description", "images", "category_id", "shop_id", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a product owned by vendorID.
func (r *GORMProductRepository) Delete(ctx context.Context, vendorID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND vendor_id = ?", id, vendorID).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetVariant retrieves a variant with its parent product.
func (r *GORMProductRepository) GetVariant(ctx context.Context, id string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).Preload("Product").First(&variant, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("variant with ID %s: %w", id, translate(err))
	}
	if variant.Product == nil {
		return nil, fmt.Errorf("variant with ID %s: %w", id, ErrNotFound)
	}
	return &variant, nil
}

// GetVariants loads several variants with their parent products.
func (r *GORMProductRepository) GetVariants(ctx context.Context, ids []string) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	if len(ids) == 0 {
		return variants, nil
	}
	if err := r.db.WithContext(ctx).Preload("Product").Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	return variants, nil
}

// CreateVariant adds a variant to an existing product.
func (r *GORMProductRepository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", translate(err))
	}
	return nil
}

// UpdateVariant writes name, SKU, price and stock. Restocking a reserved variant
// makes it visible again and emptying one hides it.
func (r *GORMProductRepository) UpdateVariant(ctx context.Context, variant *models.ProductVariant) error {
	switch {
	case variant.Stock == 0:
		variant.InOrder = models.InOrderReserved
	case variant.InOrder == models.InOrderReserved:
		variant.InOrder = models.InOrderAvailable
	}
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", variant.ID).
		Select("name", "sku", "price", "stock", "in_order", "updated_at").
		Updates(variant)
	if res.Error != nil {
		return fmt.Errorf("failed to update variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variant with ID %s: %w", variant.ID, ErrNotFound)
	}
	return nil
}
