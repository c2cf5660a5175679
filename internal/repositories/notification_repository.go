package repositories

import (
	"context"
	"fmt"

	"pasar/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification access.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, role models.Role, recipientID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, role models.Role, recipientID, id string) error
	MarkAllRead(ctx context.Context, role models.Role, recipientID string) (int64, error)
}

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

// NewGORMNotificationRepository creates a new instance of GORMNotificationRepository.
func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{db: db}
}

// Create adds a new notification.
func (r *GORMNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// List returns the notifications of a recipient, newest first.
func (r *GORMNotificationRepository) List(ctx context.Context, role models.Role, recipientID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_role = ? AND recipient_id = ?", role, recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks a notification of the recipient as read.
func (r *GORMNotificationRepository) MarkRead(ctx context.Context, role models.Role, recipientID, id string) error {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		First(&notification, "id = ? AND recipient_role = ? AND recipient_id = ?", id, role, recipientID).Error
	if err != nil {
		return fmt.Errorf("notification %s: %w", id, translate(err))
	}
	if notification.Read {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&notification).Update("is_read", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks all unread notifications of the recipient as read.
func (r *GORMNotificationRepository) MarkAllRead(ctx context.Context, role models.Role, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_role = ? AND recipient_id = ? AND is_read = ?", role, recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
