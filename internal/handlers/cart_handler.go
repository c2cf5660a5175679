package handlers

import (
	"pasar/internal/middleware"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the cart and the wishlist. Every mutation answers with
// the refetched collection.
type CartHandler struct {
	cart     *services.CartService
	wishlist *services.WishlistService
}

// NewCartHandler creates a new instance of CartHandler.
func NewCartHandler(cart *services.CartService, wishlist *services.WishlistService) *CartHandler {
	return &CartHandler{cart: cart, wishlist: wishlist}
}

// RegisterRoutes registers the cart and wishlist routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	router.Get("/cart", guard.User(h.HandleGetCart)...)
	router.Post("/cart", guard.User(h.HandleAddToCart)...)
	router.Patch("/cart", guard.User(h.HandleSetQuantity)...)
	router.Delete("/cart", guard.User(h.HandleRemoveFromCart)...)

	router.Get("/wishlist", guard.User(h.HandleGetWishlist)...)
	router.Post("/wishlist/toggle", guard.User(h.HandleToggleWishlist)...)
	router.Post("/wishlist", guard.User(h.HandleAddToWishlist)...)
	router.Delete("/wishlist/:productId", guard.User(h.HandleRemoveFromWishlist)...)
}

// CartLineRequest identifies a cart line.
type CartLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId" validate:"required"`
}

// CartQuantityRequest sets the quantity of a cart line; zero or less removes it.
type CartQuantityRequest struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// HandleGetCart returns the user's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, err := h.cart.List(c.UserContext(), middleware.CurrentSession(c).AccountID)
	if err != nil {
		return fail(c, err, "Could not retrieve cart")
	}
	return c.JSON(items)
}

// HandleAddToCart adds a variant to the cart.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req CartLineRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	items, err := h.cart.Add(c.UserContext(), middleware.CurrentSession(c).AccountID, req.ProductID, req.VariantID)
	if err != nil {
		return fail(c, err, "Could not add to cart")
	}
	return c.JSON(items)
}

// HandleSetQuantity changes the quantity of a cart line.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req CartQuantityRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	items, err := h.cart.SetQuantity(c.UserContext(), middleware.CurrentSession(c).AccountID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		return fail(c, err, "Could not update cart")
	}
	return c.JSON(items)
}

// HandleRemoveFromCart removes a line from the cart.
func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	var req CartLineRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	items, err := h.cart.Remove(c.UserContext(), middleware.CurrentSession(c).AccountID, req.ProductID, req.VariantID)
	if err != nil {
		return fail(c, err, "Could not remove from cart")
	}
	return c.JSON(items)
}

// WishlistRequest identifies a product.
type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// HandleGetWishlist returns the user's wishlist.
func (h *CartHandler) HandleGetWishlist(c *fiber.Ctx) error {
	items, err := h.wishlist.List(c.UserContext(), middleware.CurrentSession(c).AccountID)
	if err != nil {
		return fail(c, err, "Could not retrieve wishlist")
	}
	return c.JSON(items)
}

// HandleToggleWishlist adds or removes a product from the wishlist.
func (h *CartHandler) HandleToggleWishlist(c *fiber.Ctx) error {
	var req WishlistRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	added, items, err := h.wishlist.Toggle(c.UserContext(), middleware.CurrentSession(c).AccountID, req.ProductID)
	if err != nil {
		return fail(c, err, "Could not update wishlist")
	}
	return c.JSON(fiber.Map{"added": added, "items": items})
}

// HandleAddToWishlist adds a product to the wishlist.
func (h *CartHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	var req WishlistRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	items, err := h.wishlist.Add(c.UserContext(), middleware.CurrentSession(c).AccountID, req.ProductID)
	if err != nil {
		return fail(c, err, "Could not update wishlist")
	}
	return c.JSON(items)
}

// HandleRemoveFromWishlist removes a product from the wishlist.
func (h *CartHandler) HandleRemoveFromWishlist(c *fiber.Ctx) error {
	items, err := h.wishlist.Remove(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("productId"))
	if err != nil {
		return fail(c, err, "Could not update wishlist")
	}
	return c.JSON(items)
}
