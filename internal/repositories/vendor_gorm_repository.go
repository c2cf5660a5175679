package repositories

import (
	"context"
	"fmt"
	"strings"

	"pasar/internal/models"

	"gorm.io/gorm"
)

// GORMVendorRepository stores vendor accounts.
type GORMVendorRepository struct {
	db *gorm.DB
}

// NewGORMVendorRepository creates a new instance of GORMVendorRepository.
func NewGORMVendorRepository(db *gorm.DB) *GORMVendorRepository {
	return &GORMVendorRepository{db: db}
}

// Create creates a new vendor in the database.
func (r *GORMVendorRepository) Create(ctx context.Context, account *models.Account) error {
	vendor := models.Vendor{
		Name:      account.Name,
		Email:     strings.ToLower(account.Email),
		Password:  account.PasswordHash,
		Phone:     account.Phone,
		StoreName: account.StoreName,
	}
	if err := r.db.WithContext(ctx).Create(&vendor).Error; err != nil {
		return fmt.Errorf("failed to create vendor: %w", translate(err))
	}
	*account = vendorAccount(vendor)
	return nil
}

// GetByEmail retrieves a vendor by email.
func (r *GORMVendorRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, fmt.Errorf("vendor with email %s: %w", email, translate(err))
	}
	account := vendorAccount(vendor)
	return &account, nil
}

// GetByID retrieves a vendor by its ID.
func (r *GORMVendorRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("vendor with ID %s: %w", id, translate(err))
	}
	account := vendorAccount(vendor)
	return &account, nil
}

// UpdateProfile changes the vendor's name, phone and store name.
func (r *GORMVendorRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.Account, error) {
	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Phone != nil {
		changes["phone"] = *update.Phone
	}
	if update.StoreName != nil {
		changes["store_name"] = *update.StoreName
	}
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Vendor{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update vendor %s: %w", id, res.Error)
		}
	}
	return r.GetByID(ctx, id)
}

func vendorAccount(v models.Vendor) models.Account {
	return models.Account{
		ID:           v.ID,
		Role:         models.RoleVendor,
		Name:         v.Name,
		Email:        v.Email,
		PasswordHash: v.Password,
		Phone:        v.Phone,
		StoreName:    v.StoreName,
		CreatedAt:    v.CreatedAt,
	}
}
