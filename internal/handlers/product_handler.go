package handlers

import (
	"pasar/internal/middleware"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler serves the catalog and the vendor's listing management.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	router.Get("/products", h.HandleSearch)
	router.Get("/products/featured", h.HandleFeatured)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Get("/categories", h.HandleCategories)
	router.Get("/shops", h.HandleShops)
	router.Get("/shops/:id", h.HandleGetShop)

	vendor := router.Group("/vendor")
	vendor.Get("/shops", guard.Vendor(h.HandleVendorShops)...)
	vendor.Post("/shops", guard.Vendor(h.HandleCreateShop)...)
	vendor.Put("/shops/:id", guard.Vendor(h.HandleUpdateShop)...)
	vendor.Delete("/shops/:id", guard.Vendor(h.HandleDeleteShop)...)
	vendor.Get("/products", guard.Vendor(h.HandleVendorProducts)...)
	vendor.Post("/products", guard.Vendor(h.HandleCreateProduct)...)
	vendor.Put("/products/:id", guard.Vendor(h.HandleUpdateProduct)...)
	vendor.Delete("/products/:id", guard.Vendor(h.HandleDeleteProduct)...)
	vendor.Post("/products/:id/variants", guard.Vendor(h.HandleAddVariant)...)
	vendor.Put("/variants/:id", guard.Vendor(h.HandleUpdateVariant)...)
}

// HandleSearch lists visible products filtered by ?q=&category=&shop=&vendor=.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	products, err := h.service.Search(c.UserContext(), repositories.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		ShopID:   c.Query("shop"),
		VendorID: c.Query("vendor"),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	})
	if err != nil {
		return fail(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleFeatured lists featured products.
func (h *ProductHandler) HandleFeatured(c *fiber.Ctx) error {
	products, err := h.service.Featured(c.UserContext(), c.QueryInt("limit", 8))
	if err != nil {
		return fail(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCategories lists all categories.
func (h *ProductHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return fail(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleShops lists all shops.
func (h *ProductHandler) HandleShops(c *fiber.Ctx) error {
	shops, err := h.service.Shops(c.UserContext())
	if err != nil {
		return fail(c, err, "Could not retrieve shops")
	}
	return c.JSON(shops)
}

// HandleGetShop retrieves a single shop by its ID.
func (h *ProductHandler) HandleGetShop(c *fiber.Ctx) error {
	shop, err := h.service.GetShop(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err, "Could not retrieve shop")
	}
	return c.JSON(shop)
}

// ShopRequest represents the editable shop fields.
type ShopRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
}

func (r ShopRequest) shop() *models.Shop {
	return &models.Shop{Name: r.Name, Description: r.Description, LogoURL: r.LogoURL}
}

// HandleVendorShops lists the vendor's own shops.
func (h *ProductHandler) HandleVendorShops(c *fiber.Ctx) error {
	shops, err := h.service.VendorShops(c.UserContext(), middleware.CurrentSession(c).AccountID)
	if err != nil {
		return fail(c, err, "Could not retrieve shops")
	}
	return c.JSON(shops)
}

// HandleCreateShop creates a new shop.
func (h *ProductHandler) HandleCreateShop(c *fiber.Ctx) error {
	var req ShopRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	shop := req.shop()
	if err := h.service.CreateShop(c.UserContext(), middleware.CurrentSession(c).AccountID, shop); err != nil {
		return fail(c, err, "Could not create shop")
	}
	return c.Status(fiber.StatusCreated).JSON(shop)
}

// HandleUpdateShop updates a shop.
func (h *ProductHandler) HandleUpdateShop(c *fiber.Ctx) error {
	var req ShopRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	shop := req.shop()
	shop.ID = c.Params("id")
	if err := h.service.UpdateShop(c.UserContext(), middleware.CurrentSession(c).AccountID, shop); err != nil {
		return fail(c, err, "Could not update shop")
	}
	return c.JSON(shop)
}

// HandleDeleteShop deletes a shop.
func (h *ProductHandler) HandleDeleteShop(c *fiber.Ctx) error {
	if err := h.service.DeleteShop(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("id")); err != nil {
		return fail(c, err, "Could not delete shop")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VariantRequest represents a purchasable variant.
type VariantRequest struct {
	Name  string          `json:"name" validate:"required,max=150"`
	SKU   string          `json:"sku" validate:"omitempty,max=100"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

func (r VariantRequest) input() services.VariantInput {
	return services.VariantInput{Name: r.Name, SKU: r.SKU, Price: r.Price, Stock: r.Stock}
}

// ProductRequest represents a product listing.
type ProductRequest struct {
	ShopID      string           `json:"shopId"`
	Category    string           `json:"category" validate:"omitempty,max=100"`
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
	Variants    []VariantRequest `json:"variants" validate:"omitempty,dive"`
}

func (r ProductRequest) input() services.ProductInput {
	in := services.ProductInput{
		ShopID:      r.ShopID,
		Category:    r.Category,
		Name:        r.Name,
		Description: r.Description,
		Images:      r.Images,
	}
	for _, v := range r.Variants {
		in.Variants = append(in.Variants, v.input())
	}
	return in
}

// HandleVendorProducts lists the vendor's own products.
func (h *ProductHandler) HandleVendorProducts(c *fiber.Ctx) error {
	products, err := h.service.VendorProducts(c.UserContext(), middleware.CurrentSession(c).AccountID)
	if err != nil {
		return fail(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), middleware.CurrentSession(c).AccountID, req.input())
	if err != nil {
		return fail(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("id"), req.input())
	if err != nil {
		return fail(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("id")); err != nil {
		return fail(c, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleAddVariant adds a variant to a product.
func (h *ProductHandler) HandleAddVariant(c *fiber.Ctx) error {
	var req VariantRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	variant, err := h.service.AddVariant(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("id"), req.input())
	if err != nil {
		return fail(c, err, "Could not add variant")
	}
	return c.Status(fiber.StatusCreated).JSON(variant)
}

// HandleUpdateVariant updates a variant.
func (h *ProductHandler) HandleUpdateVariant(c *fiber.Ctx) error {
	var req VariantRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	variant, err := h.service.UpdateVariant(c.UserContext(), middleware.CurrentSession(c).AccountID, c.Params("id"), req.input())
	if err != nil {
		return fail(c, err, "Could not update variant")
	}
	return c.JSON(variant)
}
