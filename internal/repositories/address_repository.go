package repositories

import (
	"context"
	"fmt"

	"pasar/internal/models"

	"gorm.io/gorm"
)

// AddressRepository defines the interface for saved address access.
type AddressRepository interface {
	List(ctx context.Context, userID string) ([]models.Address, error)
	Get(ctx context.Context, userID, id string) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, userID, id string) error
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

// List returns the addresses of a user, default first.
func (r *GORMAddressRepository) List(ctx context.Context, userID string) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").Order("created_at ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// Get retrieves an address of a user by its ID.
func (r *GORMAddressRepository) Get(ctx context.Context, userID, id string) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, fmt.Errorf("address %s: %w", id, translate(err))
	}
	return &address, nil
}

// Create inserts the address; a default address clears the flag on the others.
func (r *GORMAddressRepository) Create(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefaultAddress(tx, address.UserID); err != nil {
				return err
			}
		}
		if err := tx.Create(address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
}

// Update modifies an existing address.
func (r *GORMAddressRepository) Update(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefaultAddress(tx, address.UserID); err != nil {
				return err
			}
		}
		res := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", address.ID, address.UserID).
			Select("label", "recipient", "line1", "line2", "city", "state", "postal_code", "country", "phone", "is_default").
			Updates(address)
		if res.Error != nil {
			return fmt.Errorf("failed to update address: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("address %s: %w", address.ID, ErrNotFound)
		}
		return nil
	})
}

// Delete removes an address of a user.
func (r *GORMAddressRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Address{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address %s: %w", id, ErrNotFound)
	}
	return nil
}

func clearDefaultAddress(tx *gorm.DB, userID string) error {
	err := tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}
