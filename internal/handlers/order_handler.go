package handlers

import (
	"fmt"
	"log"

	"pasar/internal/middleware"
	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", guard.User(h.HandleCreateOrder)...)
	orderRoutes.Get("/", guard.User(h.HandleGetOrders)...)
	orderRoutes.Post("/verify-otp", guard.Vendor(h.HandleVerifyOTP)...)
	orderRoutes.Post("/cancel", guard.Vendor(h.HandleCancelOrder)...)
	orderRoutes.Get("/:id", guard.Any(h.HandleGetOrderByID)...)

	router.Get("/vendor/orders", guard.Vendor(h.HandleGetVendorOrders)...)
	router.Patch("/vendor/orders/:id/status", guard.Vendor(h.HandleUpdateOrderStatus)...)
}

// OrderItemRequest is one checkout line.
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest represents the checkout body.
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Address       string             `json:"address" validate:"required_without=AddressID"`
	AddressID     string             `json:"addressId"`
	PromoCode     string             `json:"promoCode" validate:"omitempty,max=50"`
	GiftCard      string             `json:"giftCard" validate:"omitempty,max=50"`
	Total         *decimal.Decimal   `json:"total" validate:"required"`
	PaymentMethod string             `json:"paymentMethod" validate:"omitempty,oneof=COD CARD"`
}

// HandleCreateOrder places one order per vendor in the checkout.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	lines := make([]services.OrderLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = services.OrderLine{ProductID: item.ProductID, VariantID: item.VariantID, Quantity: item.Quantity}
	}
	sess := middleware.CurrentSession(c)
	result, err := h.service.PlaceOrder(c.UserContext(), sess.AccountID, services.PlaceOrderRequest{
		Items:         lines,
		Address:       req.Address,
		AddressID:     req.AddressID,
		PromoCode:     req.PromoCode,
		GiftCard:      req.GiftCard,
		Total:         req.Total,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		return fail(c, err, "Could not create order")
	}

	log.Printf("User %s placed %d order(s) totalling %s", sess.AccountID, len(result.OrderIDs), result.Total)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Order created successfully",
		"orderId":  result.OrderIDs[0],
		"orderIds": result.OrderIDs,
		"orders":   result.Orders,
	})
}

// HandleGetOrders retrieves the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListForUser(c.UserContext(), middleware.CurrentSession(c).AccountID)
	if err != nil {
		return fail(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.Get(c.UserContext(), middleware.CurrentSession(c), orderID)
	if err != nil {
		return fail(c, err, fmt.Sprintf("Could not retrieve order %s", orderID))
	}
	return c.JSON(order)
}

// VerifyOTPRequest represents the delivery confirmation body.
type VerifyOTPRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	OTP     string `json:"otp" validate:"required"`
}

// HandleVerifyOTP confirms delivery with the customer's code.
func (h *OrderHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	order, err := h.service.VerifyOTP(c.UserContext(), middleware.CurrentSession(c).AccountID, req.OrderID, req.OTP)
	if err != nil {
		return fail(c, err, "OTP verification failed")
	}
	order.Otp = nil
	return c.JSON(fiber.Map{
		"message": "OTP verified, order delivered",
		"order":   order,
	})
}

// CancelOrderRequest represents the cancellation body.
type CancelOrderRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

// HandleCancelOrder cancels an order and restores its stock.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	var req CancelOrderRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	order, err := h.service.Cancel(c.UserContext(), middleware.CurrentSession(c).AccountID, req.OrderID)
	if err != nil {
		return fail(c, err, "Could not cancel order")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Order %s cancelled", order.ID),
		"order":   order,
	})
}

// HandleGetVendorOrders lists the vendor's orders, optionally by ?status=.
func (h *OrderHandler) HandleGetVendorOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListForVendor(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Query("status"))
	if err != nil {
		return fail(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// UpdateStatusRequest represents the vendor status change body.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PROCESSING SHIPPED"`
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req UpdateStatusRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	order, err := h.service.UpdateStatus(c.UserContext(), middleware.CurrentSession(c).AccountID, orderID, models.OrderStatus(req.Status))
	if err != nil {
		return fail(c, err, "Could not update order status")
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, req.Status),
		"order":   order,
	})
}
