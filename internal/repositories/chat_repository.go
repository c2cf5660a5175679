package repositories

import (
	"context"
	"fmt"
	"time"

	"pasar/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for chat threads and messages.
type ChatRepository interface {
	ListForUser(ctx context.Context, userID string) ([]models.Chat, error)
	ListForVendor(ctx context.Context, vendorID string) ([]models.Chat, error)
	GetOrCreate(ctx context.Context, userID, vendorID string) (*models.Chat, error)
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	Messages(ctx context.Context, chatID string) ([]models.Message, error)
	AddMessage(ctx context.Context, message *models.Message) error
}

// GORMChatRepository is a GORM implementation of ChatRepository.
type GORMChatRepository struct {
	db *gorm.DB
}

// NewGORMChatRepository creates a new instance of GORMChatRepository.
func NewGORMChatRepository(db *gorm.DB) *GORMChatRepository {
	return &GORMChatRepository{db: db}
}

// ListForUser returns the chats of a user.
func (r *GORMChatRepository) ListForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	if err := r.db.WithContext(ctx).Preload("Vendor").Where("user_id = ?", userID).Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// ListForVendor returns the chats of a vendor.
func (r *GORMChatRepository) ListForVendor(ctx context.Context, vendorID string) ([]models.Chat, error) {
	var chats []models.Chat
	if err := r.db.WithContext(ctx).Preload("User").Where("vendor_id = ?", vendorID).Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// GetOrCreate returns the single thread of the pair.
func (r *GORMChatRepository) GetOrCreate(ctx context.Context, userID, vendorID string) (*models.Chat, error) {
	chat := models.Chat{UserID: userID, VendorID: vendorID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "vendor_id"}}, DoNothing: true}).
		Create(&chat).Error
	if err != nil {
		return nil, fmt.Errorf("failed to open chat: %w", err)
	}

	var stored models.Chat
	if err := r.db.WithContext(ctx).Preload("Vendor").First(&stored, "user_id = ? AND vendor_id = ?", userID, vendorID).Error; err != nil {
		return nil, fmt.Errorf("chat %s/%s: %w", userID, vendorID, translate(err))
	}
	return &stored, nil
}

// GetByID retrieves a chat by its ID.
func (r *GORMChatRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("chat %s: %w", id, translate(err))
	}
	return &chat, nil
}

// Messages lists a thread oldest first.
func (r *GORMChatRepository) Messages(ctx context.Context, chatID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("created_at ASC").Order("id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// AddMessage stores the message and bumps the thread to the top of both inboxes.
func (r *GORMChatRepository) AddMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to store message: %w", err)
		}
		if err := tx.Model(&models.Chat{}).Where("id = ?", message.ChatID).Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to touch chat: %w", err)
		}
		return nil
	})
}
