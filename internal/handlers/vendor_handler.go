package handlers

import (
	"pasar/internal/middleware"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// VendorHandler serves the vendor dashboard, customers and product reviews.
type VendorHandler struct {
	vendors *services.VendorService
	reviews *services.ReviewService
}

// NewVendorHandler creates a new instance of VendorHandler.
func NewVendorHandler(vendors *services.VendorService, reviews *services.ReviewService) *VendorHandler {
	return &VendorHandler{vendors: vendors, reviews: reviews}
}

// RegisterRoutes registers the vendor and review routes with the Fiber app.
func (h *VendorHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	router.Get("/vendor/dashboard", guard.Vendor(h.HandleDashboard)...)
	router.Get("/vendor/customers", guard.Vendor(h.HandleCustomers)...)
	router.Get("/vendor/reviews", guard.Vendor(h.HandleVendorReviews)...)

	router.Get("/products/:id/reviews", h.HandleProductReviews)
	router.Post("/products/:id/reviews", guard.User(h.HandleCreateReview)...)
}

// HandleDashboard aggregates sales for ?timeRange=week|month|year.
func (h *VendorHandler) HandleDashboard(c *fiber.Ctx) error {
	r, err := services.ParseTimeRange(c.Query("timeRange"))
	if err != nil {
		return fail(c, err, "Invalid time range")
	}
	stats, err := h.vendors.Dashboard(c.UserContext(), middleware.CurrentSession(c).AccountID, r)
	if err != nil {
		return fail(c, err, "Could not build dashboard")
	}
	return c.JSON(stats)
}

// HandleCustomers lists the customers who ordered from the vendor.
func (h *VendorHandler) HandleCustomers(c *fiber.Ctx) error {
	customers, err := h.vendors.Customers(c.UserContext(), middleware.CurrentSession(c).AccountID)
	if err != nil {
		return fail(c, err, "Could not retrieve customers")
	}
	return c.JSON(customers)
}

// HandleVendorReviews lists reviews of the vendor's products.
func (h *VendorHandler) HandleVendorReviews(c *fiber.Ctx) error {
	reviews, err := h.vendors.Reviews(c.UserContext(), middleware.CurrentSession(c).AccountID)
	if err != nil {
		return fail(c, err, "Could not retrieve reviews")
	}
	return c.JSON(reviews)
}

// HandleProductReviews lists reviews of a product.
func (h *VendorHandler) HandleProductReviews(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListByProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "Could not retrieve reviews")
	}
	return c.JSON(reviews)
}

// ReviewRequest is a rating with an optional comment.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// HandleCreateReview posts a review of a delivered product.
func (h *VendorHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	review, err := h.reviews.Create(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return fail(c, err, "Could not save review")
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}
