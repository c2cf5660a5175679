package repositories

import (
	"context"
	"fmt"
	"strings"

	"pasar/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository stores shopper accounts.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create inserts a user from the account view and fills in the generated id.
func (r *GORMUserRepository) Create(ctx context.Context, account *models.Account) error {
	user := models.User{
		Name:     account.Name,
		Email:    strings.ToLower(account.Email),
		Password: account.PasswordHash,
		Phone:    account.Phone,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	*account = userAccount(user)
	return nil
}

// GetByEmail retrieves a user by email.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, fmt.Errorf("user with email %s: %w", email, translate(err))
	}
	account := userAccount(user)
	return &account, nil
}

// GetByID retrieves a user by id.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("user with ID %s: %w", id, translate(err))
	}
	account := userAccount(user)
	return &account, nil
}

// UpdateProfile changes name and phone. Users have no store name.
func (r *GORMUserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.Account, error) {
	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Phone != nil {
		changes["phone"] = *update.Phone
	}
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update user %s: %w", id, res.Error)
		}
	}
	return r.GetByID(ctx, id)
}

func userAccount(u models.User) models.Account {
	return models.Account{
		ID:           u.ID,
		Role:         models.RoleUser,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.Password,
		Phone:        u.Phone,
		CreatedAt:    u.CreatedAt,
	}
}
