package services_test

import (
	"context"
	"testing"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddIncrementsSingleLine(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	productRepo := repositories.NewGORMProductRepository(db)
	cart := services.NewCartService(repositories.NewGORMCartRepository(db), productRepo)
	user := createUser(t, db, "ana@example.com")
	vendor := createVendor(t, db, "budi@example.com")
	shirt := createProduct(t, db, vendor.ID, "Shirt", variant("M", "10", 5), variant("L", "10", 0))

	for i := 0; i < 3; i++ {
		_, err := cart.Add(ctx, user.ID, shirt.ID, shirt.Variants[0].ID)
		require.NoError(t, err)
	}
	items, err := cart.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	_, err = cart.Add(ctx, user.ID, shirt.ID, shirt.Variants[1].ID)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	items, err = cart.SetQuantity(ctx, user.ID, shirt.ID, shirt.Variants[0].ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, items[0].Quantity)

	items, err = cart.SetQuantity(ctx, user.ID, shirt.ID, shirt.Variants[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), count(t, db, &models.CartItem{}, "user_id = ?", user.ID))
}

func TestWishlistService_ToggleTwiceRestores(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	wishlist := services.NewWishlistService(repositories.NewGORMWishlistRepository(db), repositories.NewGORMProductRepository(db))
	user := createUser(t, db, "ana@example.com")
	vendor := createVendor(t, db, "budi@example.com")
	mug := createProduct(t, db, vendor.ID, "Mug", variant("White", "7", 3))

	added, items, err := wishlist.Toggle(ctx, user.ID, mug.ID)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Len(t, items, 1)

	added, items, err = wishlist.Toggle(ctx, user.ID, mug.ID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, items)

	_, _, err = wishlist.Toggle(ctx, user.ID, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
