package handlers

import (
	"pasar/internal/middleware"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler serves chat threads and notifications.
type ChatHandler struct {
	chats         *services.ChatService
	notifications *services.NotificationService
}

// NewChatHandler creates a new instance of ChatHandler.
func NewChatHandler(chats *services.ChatService, notifications *services.NotificationService) *ChatHandler {
	return &ChatHandler{chats: chats, notifications: notifications}
}

// RegisterRoutes registers the chat and notification routes with the Fiber app.
func (h *ChatHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	router.Get("/chats", guard.Any(h.HandleListChats)...)
	router.Post("/chats", guard.User(h.HandleOpenChat)...)
	router.Get("/chats/:id/messages", guard.Any(h.HandleMessages)...)
	router.Post("/chats/:id/messages", guard.Any(h.HandleSend)...)

	router.Get("/notifications", guard.Any(h.HandleNotifications)...)
	router.Patch("/notifications/read-all", guard.Any(h.HandleMarkAllRead)...)
	router.Patch("/notifications/:id/read", guard.Any(h.HandleMarkRead)...)
}

// HandleListChats lists the chats of the authenticated account.
func (h *ChatHandler) HandleListChats(c *fiber.Ctx) error {
	chats, err := h.chats.List(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return fail(c, err, "Could not retrieve chats")
	}
	return c.JSON(chats)
}

// OpenChatRequest names the vendor to talk to.
type OpenChatRequest struct {
	VendorID string `json:"vendorId" validate:"required"`
}

// HandleOpenChat opens a chat with a vendor.
func (h *ChatHandler) HandleOpenChat(c *fiber.Ctx) error {
	var req OpenChatRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	chat, err := h.chats.Open(c.UserContext(), middleware.CurrentSession(c).AccountID, req.VendorID)
	if err != nil {
		return fail(c, err, "Could not open chat")
	}
	return c.JSON(chat)
}

// HandleMessages lists the messages of a chat.
func (h *ChatHandler) HandleMessages(c *fiber.Ctx) error {
	messages, err := h.chats.Messages(c.UserContext(), middleware.CurrentSession(c), c.Params("id"))
	if err != nil {
		return fail(c, err, "Could not retrieve messages")
	}
	return c.JSON(messages)
}

// SendMessageRequest is one chat line.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// HandleSend posts a message to a chat.
func (h *ChatHandler) HandleSend(c *fiber.Ctx) error {
	var req SendMessageRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	message, err := h.chats.Send(c.UserContext(), middleware.CurrentSession(c), c.Params("id"), req.Content)
	if err != nil {
		return fail(c, err, "Could not send message")
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// HandleNotifications lists notifications.
func (h *ChatHandler) HandleNotifications(c *fiber.Ctx) error {
	notifications, err := h.notifications.List(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return fail(c, err, "Could not retrieve notifications")
	}
	return c.JSON(notifications)
}

// HandleMarkRead marks a notification as read.
func (h *ChatHandler) HandleMarkRead(c *fiber.Ctx) error {
	if err := h.notifications.MarkRead(c.UserContext(), middleware.CurrentSession(c), c.Params("id")); err != nil {
		return fail(c, err, "Could not update notification")
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// HandleMarkAllRead marks all notifications as read.
func (h *ChatHandler) HandleMarkAllRead(c *fiber.Ctx) error {
	n, err := h.notifications.MarkAllRead(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return fail(c, err, "Could not update notifications")
	}
	return c.JSON(fiber.Map{"message": "Notifications marked as read", "updated": n})
}
