package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/session"
)

const maxMessageLength = 2000

// ChatService manages user-vendor conversations.
type ChatService struct {
	chats   repositories.ChatRepository
	vendors repositories.AccountRepository
}

// NewChatService creates a new instance of ChatService.
func NewChatService(chats repositories.ChatRepository, vendors repositories.AccountRepository) *ChatService {
	return &ChatService{chats: chats, vendors: vendors}
}

// List returns the caller's threads, most recently active first.
func (s *ChatService) List(ctx context.Context, sess *session.Session) ([]models.Chat, error) {
	if sess.IsVendor() {
		return s.chats.ListForVendor(ctx, sess.AccountID)
	}
	return s.chats.ListForUser(ctx, sess.AccountID)
}

// Open returns the user's thread with vendorID, starting it if needed.
func (s *ChatService) Open(ctx context.Context, userID, vendorID string) (*models.Chat, error) {
	if _, err := s.vendors.GetByID(ctx, vendorID); err != nil {
		return nil, domainErr(err)
	}
	return s.chats.GetOrCreate(ctx, userID, vendorID)
}

func (s *ChatService) participant(ctx context.Context, sess *session.Session, chatID string) (*models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, domainErr(err)
	}
	if (sess.IsUser() && chat.UserID == sess.AccountID) || (sess.IsVendor() && chat.VendorID == sess.AccountID) {
		return chat, nil
	}
	return nil, fmt.Errorf("%w: chat %s", ErrForbidden, chatID)
}

// Messages returns the messages of a chat the session takes part in.
func (s *ChatService) Messages(ctx context.Context, sess *session.Session, chatID string) ([]models.Message, error) {
	if _, err := s.participant(ctx, sess, chatID); err != nil {
		return nil, err
	}
	return s.chats.Messages(ctx, chatID)
}

// Send posts a message to a chat on behalf of the session.
func (s *ChatService) Send(ctx context.Context, sess *session.Session, chatID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("message is empty")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, invalid("message is longer than %d characters", maxMessageLength)
	}
	if _, err := s.participant(ctx, sess, chatID); err != nil {
		return nil, err
	}
	message := &models.Message{
		ChatID:     chatID,
		SenderRole: sess.Role,
		SenderID:   sess.AccountID,
		Content:    content,
	}
	if err := s.chats.AddMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// NotificationService reads and acknowledges notifications.
type NotificationService struct {
	repo repositories.NotificationRepository
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(repo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the notifications of the session's account.
func (s *NotificationService) List(ctx context.Context, sess *session.Session) ([]models.Notification, error) {
	return s.repo.List(ctx, sess.Role, sess.AccountID)
}

// MarkRead marks one notification of the session's account as read.
func (s *NotificationService) MarkRead(ctx context.Context, sess *session.Session, id string) error {
	return domainErr(s.repo.MarkRead(ctx, sess.Role, sess.AccountID, id))
}

// MarkAllRead marks every notification of the session's account as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, sess *session.Session) (int64, error) {
	return s.repo.MarkAllRead(ctx, sess.Role, sess.AccountID)
}
