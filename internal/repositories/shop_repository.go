package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pasar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShopRepository defines the interface for shop data access.
type ShopRepository interface {
	List(ctx context.Context) ([]models.Shop, error)
	ListByVendor(ctx context.Context, vendorID string) ([]models.Shop, error)
	GetByID(ctx context.Context, id string) (*models.Shop, error)
	Create(ctx context.Context, shop *models.Shop) error
	Update(ctx context.Context, shop *models.Shop) error
	Delete(ctx context.Context, vendorID, id string) error
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindOrCreate(ctx context.Context, name string) (*models.Category, error)
}

// GORMShopRepository is a GORM implementation of ShopRepository.
type GORMShopRepository struct {
	db *gorm.DB
}

// NewGORMShopRepository creates a new instance of GORMShopRepository.
func NewGORMShopRepository(db *gorm.DB) *GORMShopRepository {
	return &GORMShopRepository{db: db}
}

// List returns all shops.
func (r *GORMShopRepository) List(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}

// ListByVendor returns the shops of a vendor.
func (r *GORMShopRepository) ListByVendor(ctx context.Context, vendorID string) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).Order("name ASC").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list vendor shops: %w", err)
	}
	return shops, nil
}

// GetByID retrieves a shop by its ID.
func (r *GORMShopRepository) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).
		Preload("Products.Variants", "in_order <> ?", models.InOrderReserved).
		First(&shop, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("shop with ID %s: %w", id, translate(err))
	}
	return &shop, nil
}

// Create adds a new shop.
func (r *GORMShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	if err := r.db.WithContext(ctx).Create(shop).Error; err != nil {
		return fmt.Errorf("failed to create shop: %w", translate(err))
	}
	return nil
}

// Update modifies an existing shop.
func (r *GORMShopRepository) Update(ctx context.Context, shop *models.Shop) error {
	res := r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ? AND vendor_id = ?", shop.ID, shop.VendorID).
		Select("name", "description", "logo_url", "updated_at").
		Updates(shop)
	if res.Error != nil {
		return fmt.Errorf("failed to update shop: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shop with ID %s: %w", shop.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a shop of a vendor.
func (r *GORMShopRepository) Delete(ctx context.Context, vendorID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND vendor_id = ?", id, vendorID).Delete(&models.Shop{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete shop: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shop with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// List returns all categories by name.
func (r *GORMCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// FindOrCreate returns the category whose slug matches name, creating it on first use.
func (r *GORMCategoryRepository) FindOrCreate(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	slug := Slugify(name)
	var stored models.Category
	err := r.db.WithContext(ctx).First(&stored, "slug = ?", slug).Error
	if err == nil {
		return &stored, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up category %s: %w", name, err)
	}

	category := models.Category{Name: name, Slug: slug}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&category).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if err := r.db.WithContext(ctx).First(&stored, "name = ?", name).Error; err != nil {
		return nil, fmt.Errorf("category %s: %w", name, translate(err))
	}
	return &stored, nil
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
