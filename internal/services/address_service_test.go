package services_test

import (
	"context"
	"testing"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressService_SingleDefault(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addresses := services.NewAddressService(repositories.NewGORMAddressRepository(db))
	user := createUser(t, db, "ana@example.com")
	other := createUser(t, db, "eko@example.com")

	home := &models.Address{Label: "Home", Recipient: "Ana", Line1: "Jl. Merdeka 1", City: "Bandung", IsDefault: true}
	require.NoError(t, addresses.Create(ctx, user.ID, home))
	office := &models.Address{Label: "Office", Line1: "Jl. Sudirman 5", City: "Jakarta", IsDefault: true}
	require.NoError(t, addresses.Create(ctx, user.ID, office))

	list, err := addresses.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, office.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	assert.ErrorIs(t, addresses.Create(ctx, user.ID, &models.Address{Label: "Empty"}), services.ErrValidation)
	assert.ErrorIs(t, addresses.Update(ctx, other.ID, home.ID, &models.Address{Line1: "x", City: "y"}), services.ErrNotFound)
	assert.ErrorIs(t, addresses.Delete(ctx, other.ID, home.ID), services.ErrNotFound)
}

func TestOrderService_UsesSavedAddress(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	addresses := services.NewAddressService(repositories.NewGORMAddressRepository(env.db))
	saved := &models.Address{Recipient: "Ana", Line1: "Jl. Merdeka 1", City: "Bandung", Country: "ID"}
	require.NoError(t, addresses.Create(ctx, env.user.ID, saved))
	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "10", 5))

	result, err := env.orders.PlaceOrder(ctx, env.user.ID, services.PlaceOrderRequest{
		Items:     []services.OrderLine{{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1}},
		AddressID: saved.ID,
		Total:     total("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana, Jl. Merdeka 1, Bandung, ID", result.Orders[0].Address)
	assert.True(t, decimal.NewFromInt(10).Equal(result.Total))

	stranger := createUser(t, env.db, "eko@example.com")
	_, err = env.orders.PlaceOrder(ctx, stranger.ID, services.PlaceOrderRequest{
		Items:     []services.OrderLine{{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1}},
		AddressID: saved.ID,
		Total:     total("10"),
	})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
