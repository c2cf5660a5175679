package services

import (
	"context"
	"fmt"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

// CartService applies cart mutations and returns the refetched cart.
type CartService struct {
	cart     repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new instance of CartService.
func NewCartService(cart repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{cart: cart, products: products}
}

// List returns the cart items of the user.
func (s *CartService) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.cart.List(ctx, userID)
}

// Add puts one unit of the variant in the cart, or one more if the line exists.
func (s *CartService) Add(ctx context.Context, userID, productID, variantID string) ([]models.CartItem, error) {
	variant, err := s.products.GetVariant(ctx, variantID)
	if err != nil {
		return nil, domainErr(err)
	}
	if variant.ProductID != productID {
		return nil, invalid("variant %s does not belong to product %s", variantID, productID)
	}
	if variant.InOrder == models.InOrderReserved || variant.Stock <= 0 {
		return nil, fmt.Errorf("%w: variant %s is sold out", ErrInsufficientStock, variantID)
	}
	if err := s.cart.Increment(ctx, userID, productID, variantID); err != nil {
		return nil, domainErr(err)
	}
	return s.cart.List(ctx, userID)
}

// SetQuantity overwrites the quantity of a line; zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID, variantID string, quantity int) ([]models.CartItem, error) {
	var err error
	if quantity <= 0 {
		err = s.cart.Remove(ctx, userID, productID, variantID)
	} else {
		err = s.cart.SetQuantity(ctx, userID, productID, variantID, quantity)
	}
	if err != nil {
		return nil, domainErr(err)
	}
	return s.cart.List(ctx, userID)
}

// Remove deletes a line from the cart and returns what is left.
func (s *CartService) Remove(ctx context.Context, userID, productID, variantID string) ([]models.CartItem, error) {
	if err := s.cart.Remove(ctx, userID, productID, variantID); err != nil {
		return nil, domainErr(err)
	}
	return s.cart.List(ctx, userID)
}

// WishlistService applies wishlist mutations and returns the refetched wishlist.
type WishlistService struct {
	wishlist repositories.WishlistRepository
	products repositories.ProductRepository
}

// NewWishlistService creates a new instance of WishlistService.
func NewWishlistService(wishlist repositories.WishlistRepository, products repositories.ProductRepository) *WishlistService {
	return &WishlistService{wishlist: wishlist, products: products}
}

// List returns the wishlist of the user.
func (s *WishlistService) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	return s.wishlist.List(ctx, userID)
}

func (s *WishlistService) productExists(ctx context.Context, productID string) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return domainErr(err)
	}
	return nil
}

// Toggle adds the product when absent and removes it when present.
func (s *WishlistService) Toggle(ctx context.Context, userID, productID string) (bool, []models.WishlistItem, error) {
	if err := s.productExists(ctx, productID); err != nil {
		return false, nil, err
	}
	added, err := s.wishlist.Toggle(ctx, userID, productID)
	if err != nil {
		return false, nil, err
	}
	items, err := s.wishlist.List(ctx, userID)
	return added, items, err
}

// Add is idempotent.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) ([]models.WishlistItem, error) {
	if err := s.productExists(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.wishlist.Add(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.wishlist.List(ctx, userID)
}

// Remove deletes a product from the wishlist and returns what is left.
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) ([]models.WishlistItem, error) {
	if err := s.wishlist.Remove(ctx, userID, productID); err != nil {
		return nil, domainErr(err)
	}
	return s.wishlist.List(ctx, userID)
}
