package repositories

import (
	"context"

	"pasar/internal/models"
)

// ProfileUpdate carries the editable profile fields; nil leaves a field untouched.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	StoreName *string
}

// AccountRepository is the data access contract shared by user and vendor accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.Account, error)
}

// AccountRepositories dispatches account storage by role.
type AccountRepositories map[models.Role]AccountRepository

// NewAccountRepositories wires the GORM user and vendor repositories.
func NewAccountRepositories(users *GORMUserRepository, vendors *GORMVendorRepository) AccountRepositories {
	return AccountRepositories{
		models.RoleUser:   users,
		models.RoleVendor: vendors,
	}
}
