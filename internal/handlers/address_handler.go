package handlers

import (
	"pasar/internal/middleware"
	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AddressHandler serves the user's saved addresses.
type AddressHandler struct {
	service *services.AddressService
}

// NewAddressHandler creates a new instance of AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// RegisterRoutes registers the address routes with the Fiber app.
func (h *AddressHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	router.Get("/addresses", guard.User(h.HandleList)...)
	router.Post("/addresses", guard.User(h.HandleCreate)...)
	router.Put("/addresses/:id", guard.User(h.HandleUpdate)...)
	router.Delete("/addresses/:id", guard.User(h.HandleDelete)...)
}

// AddressRequest represents a saved address.
type AddressRequest struct {
	Label      string `json:"label" validate:"max=50"`
	Recipient  string `json:"recipient" validate:"required,max=100"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"max=32"`
	IsDefault  bool   `json:"isDefault"`
}

func (r AddressRequest) address() *models.Address {
	return &models.Address{
		Label:      r.Label,
		Recipient:  r.Recipient,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
		IsDefault:  r.IsDefault,
	}
}

// HandleList lists the user's addresses.
func (h *AddressHandler) HandleList(c *fiber.Ctx) error {
	addresses, err := h.service.List(c.UserContext(), middleware.CurrentSession(c).AccountID)
	if err != nil {
		return fail(c, err, "Could not retrieve addresses")
	}
	return c.JSON(addresses)
}

// HandleCreate saves a new address.
func (h *AddressHandler) HandleCreate(c *fiber.Ctx) error {
	var req AddressRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	address := req.address()
	if err := h.service.Create(c.UserContext(), middleware.CurrentSession(c).AccountID, address); err != nil {
		return fail(c, err, "Could not save address")
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleUpdate updates an address.
func (h *AddressHandler) HandleUpdate(c *fiber.Ctx) error {
	var req AddressRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	address := req.address()
	if err := h.service.Update(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("id"), address); err != nil {
		return fail(c, err, "Could not update address")
	}
	return c.JSON(address)
}

// HandleDelete deletes an address.
func (h *AddressHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("id")); err != nil {
		return fail(c, err, "Could not delete address")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
