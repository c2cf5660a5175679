package handlers

import (
	"pasar/internal/middleware"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler creates card payments and receives processor webhooks.
type PaymentHandler struct {
	service *services.PaymentService
}

// NewPaymentHandler creates a new instance of PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers the payment routes with the Fiber app.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	router.Post("/payments/intent", guard.User(h.HandleCreateIntent)...)
	router.Post("/payments/webhook", h.HandleWebhook)
}

// IntentRequest names the order to pay.
type IntentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

// HandleCreateIntent starts a card payment for an order.
func (h *PaymentHandler) HandleCreateIntent(c *fiber.Ctx) error {
	var req IntentRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	intent, err := h.service.CreateIntent(c.UserContext(), middleware.CurrentSession(c).AccountID, req.OrderID)
	if err != nil {
		return fail(c, err, "Could not start payment")
	}
	return c.JSON(intent)
}

// HandleWebhook verifies the raw body against the Stripe-Signature header.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if err := h.service.HandleWebhook(c.UserContext(), payload, c.Get("Stripe-Signature")); err != nil {
		return fail(c, err, "Webhook rejected")
	}
	return c.JSON(fiber.Map{"received": true})
}
