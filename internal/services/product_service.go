package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"pasar/internal/models"
	"pasar/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProductService handles business logic related to shops, products and variants.
type ProductService struct {
	products   repositories.ProductRepository
	shops      repositories.ShopRepository
	categories repositories.CategoryRepository
	reviews    repositories.ReviewRepository
	shuffle    func(n int, swap func(i, j int))
}

// NewProductService creates a new ProductService.
func NewProductService(products repositories.ProductRepository, shops repositories.ShopRepository,
	categories repositories.CategoryRepository, reviews repositories.ReviewRepository) *ProductService {
	return &ProductService{
		products:   products,
		shops:      shops,
		categories: categories,
		reviews:    reviews,
		shuffle:    rand.Shuffle,
	}
}

// ProductDetail is a product with its rating summary.
type ProductDetail struct {
	*models.Product
	Rating repositories.RatingSummary `json:"rating"`
}

// VariantInput is the vendor-editable part of a variant.
type VariantInput struct {
	Name  string
	SKU   string
	Price decimal.Decimal
	Stock int
}

// ProductInput is the vendor-editable part of a product.
type ProductInput struct {
	ShopID      string
	Category    string
	Name        string
	Description string
	Images      []string
	Variants    []VariantInput
}

const maxPageSize = 100

// Search lists visible products matching filter.
func (s *ProductService) Search(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	if filter.Limit <= 0 || filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.products.Search(ctx, filter)
}

// Featured returns up to limit visible products in random order.
func (s *ProductService) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = 8
	}
	products, err := s.products.Search(ctx, repositories.ProductFilter{Limit: maxPageSize})
	if err != nil {
		return nil, err
	}
	s.shuffle(len(products), func(i, j int) { products[i], products[j] = products[j], products[i] })
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID with its rating.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*ProductDetail, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, domainErr(err)
	}
	rating, err := s.reviews.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: product, Rating: rating}, nil
}

// Categories returns all product categories.
func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// Shops returns all shops.
func (s *ProductService) Shops(ctx context.Context) ([]models.Shop, error) {
	return s.shops.List(ctx)
}

// GetShop retrieves a shop by its ID.
func (s *ProductService) GetShop(ctx context.Context, id string) (*models.Shop, error) {
	shop, err := s.shops.GetByID(ctx, id)
	if err != nil {
		return nil, domainErr(err)
	}
	return shop, nil
}

// VendorShops lists the shops of a vendor.
func (s *ProductService) VendorShops(ctx context.Context, vendorID string) ([]models.Shop, error) {
	return s.shops.ListByVendor(ctx, vendorID)
}

// CreateShop opens a new shop for the vendor.
func (s *ProductService) CreateShop(ctx context.Context, vendorID string, shop *models.Shop) error {
	if strings.TrimSpace(shop.Name) == "" {
		return invalid("shop name is required")
	}
	shop.ID = ""
	shop.VendorID = vendorID
	return domainErr(s.shops.Create(ctx, shop))
}

// UpdateShop edits a shop the vendor owns.
func (s *ProductService) UpdateShop(ctx context.Context, vendorID string, shop *models.Shop) error {
	if strings.TrimSpace(shop.Name) == "" {
		return invalid("shop name is required")
	}
	shop.VendorID = vendorID
	return domainErr(s.shops.Update(ctx, shop))
}

// DeleteShop removes a shop owned by the vendor.
func (s *ProductService) DeleteShop(ctx context.Context, vendorID, id string) error {
	return domainErr(s.shops.Delete(ctx, vendorID, id))
}

// VendorProducts lists every product of the vendor, including sold-out variants.
func (s *ProductService) VendorProducts(ctx context.Context, vendorID string) ([]models.Product, error) {
	return s.products.ListByVendor(ctx, vendorID)
}

func (s *ProductService) ownedShop(ctx context.Context, vendorID, shopID string) error {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		return domainErr(err)
	}
	if shop.VendorID != vendorID {
		return fmt.Errorf("%w: shop %s belongs to another vendor", ErrForbidden, shopID)
	}
	return nil
}

func (s *ProductService) categoryID(ctx context.Context, name string) (*string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	category, err := s.categories.FindOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}
	return &category.ID, nil
}

func validateVariant(v VariantInput) error {
	if strings.TrimSpace(v.Name) == "" {
		return invalid("variant name is required")
	}
	if v.Price.IsNegative() {
		return invalid("variant price must not be negative")
	}
	if v.Stock < 0 {
		return invalid("variant stock must not be negative")
	}
	return nil
}

func newVariant(v VariantInput) models.ProductVariant {
	variant := models.ProductVariant{Name: v.Name, SKU: v.SKU, Price: v.Price, Stock: v.Stock}
	if v.Stock == 0 {
		variant.InOrder = models.InOrderReserved
	}
	return variant
}

// CreateProduct lists a new product with its variants in one of the vendor's shops.
func (s *ProductService) CreateProduct(ctx context.Context, vendorID string, in ProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("product name is required")
	}
	if len(in.Variants) == 0 {
		return nil, invalid("at least one variant is required")
	}
	for _, v := range in.Variants {
		if err := validateVariant(v); err != nil {
			return nil, err
		}
	}
	if err := s.ownedShop(ctx, vendorID, in.ShopID); err != nil {
		return nil, err
	}
	categoryID, err := s.categoryID(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		VendorID:    vendorID,
		ShopID:      in.ShopID,
		CategoryID:  categoryID,
		Name:        in.Name,
		Description: in.Description,
		Images:      in.Images,
	}
	for _, v := range in.Variants {
		product.Variants = append(product.Variants, newVariant(v))
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, domainErr(err)
	}
	return product, nil
}

// UpdateProduct edits the listing fields of a product the vendor owns. Variants
// are edited separately.
func (s *ProductService) UpdateProduct(ctx context.Context, vendorID, id string, in ProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("product name is required")
	}
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, domainErr(err)
	}
	if current.VendorID != vendorID {
		return nil, fmt.Errorf("%w: product %s belongs to another vendor", ErrForbidden, id)
	}
	if in.ShopID == "" {
		in.ShopID = current.ShopID
	} else if err := s.ownedShop(ctx, vendorID, in.ShopID); err != nil {
		return nil, err
	}
	categoryID, err := s.categoryID(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	current.ShopID = in.ShopID
	current.CategoryID = categoryID
	current.Name = in.Name
	current.Description = in.Description
	current.Images = in.Images
	current.Variants, current.Category, current.Shop = nil, nil, nil
	if err := s.products.Update(ctx, current); err != nil {
		return nil, domainErr(err)
	}
	return s.products.GetByID(ctx, id)
}

// DeleteProduct removes a product the vendor owns.
func (s *ProductService) DeleteProduct(ctx context.Context, vendorID, id string) error {
	return domainErr(s.products.Delete(ctx, vendorID, id))
}

// AddVariant adds a purchasable variant to a product the vendor owns.
func (s *ProductService) AddVariant(ctx context.Context, vendorID, productID string, in VariantInput) (*models.ProductVariant, error) {
	if err := validateVariant(in); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, domainErr(err)
	}
	if product.VendorID != vendorID {
		return nil, fmt.Errorf("%w: product %s belongs to another vendor", ErrForbidden, productID)
	}
	variant := newVariant(in)
	variant.ProductID = productID
	if err := s.products.CreateVariant(ctx, &variant); err != nil {
		return nil, domainErr(err)
	}
	return &variant, nil
}

// UpdateVariant changes price and stock of a variant the vendor owns.
func (s *ProductService) UpdateVariant(ctx context.Context, vendorID, variantID string, in VariantInput) (*models.ProductVariant, error) {
	if err := validateVariant(in); err != nil {
		return nil, err
	}
	variant, err := s.products.GetVariant(ctx, variantID)
	if err != nil {
		return nil, domainErr(err)
	}
	if variant.Product.VendorID != vendorID {
		return nil, fmt.Errorf("%w: variant %s belongs to another vendor", ErrForbidden, variantID)
	}
	variant.Name = in.Name
	variant.SKU = in.SKU
	variant.Price = in.Price
	variant.Stock = in.Stock
	variant.Product = nil
	if err := s.products.UpdateVariant(ctx, variant); err != nil {
		return nil, domainErr(err)
	}
	return variant, nil
}
