package services_test

import (
	"context"
	"testing"

	"pasar/internal/events"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"
	"pasar/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderEnv struct {
	db        *gorm.DB
	orders    *services.OrderService
	cart      *services.CartService
	publisher *recordingPublisher
	user      *models.User
	vendor    *models.Vendor
}

func newOrderEnv(t *testing.T) *orderEnv {
	db := newTestDB(t)
	publisher := &recordingPublisher{}
	productRepo := repositories.NewGORMProductRepository(db)
	return &orderEnv{
		db: db,
		orders: services.NewOrderService(repositories.NewGORMOrderRepository(db), productRepo,
			repositories.NewGORMAddressRepository(db), publisher, "usd"),
		cart:      services.NewCartService(repositories.NewGORMCartRepository(db), productRepo),
		publisher: publisher,
		user:      createUser(t, db, "ana@example.com"),
		vendor:    createVendor(t, db, "budi@example.com"),
	}
}

func (e *orderEnv) place(t *testing.T, sum string, lines ...services.OrderLine) *services.PlaceOrderResult {
	t.Helper()
	result, err := e.orders.PlaceOrder(context.Background(), e.user.ID, services.PlaceOrderRequest{
		Items:   lines,
		Address: "Jl. Merdeka 1, Bandung",
		Total:   total(sum),
	})
	require.NoError(t, err)
	return result
}

func (e *orderEnv) otp(t *testing.T, orderID string) string {
	t.Helper()
	orders, err := e.orders.ListForUser(context.Background(), e.user.ID)
	require.NoError(t, err)
	for _, o := range orders {
		if o.ID == orderID {
			require.NotNil(t, o.Otp)
			return o.Otp.Code
		}
	}
	t.Fatalf("order %s not listed for user", orderID)
	return ""
}

func TestOrderService_CashOnDeliveryLifecycle(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "50", 5))
	v := &shirt.Variants[0]

	result := env.place(t, "100", services.OrderLine{ProductID: shirt.ID, VariantID: v.ID, Quantity: 2})
	require.Len(t, result.Orders, 1)
	order := result.Orders[0]
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.True(t, decimal.NewFromInt(100).Equal(order.Total))
	assert.Equal(t, 3, reload(t, env.db, v).Stock)
	assert.Equal(t, int64(1), count(t, env.db, &models.Notification{}, "recipient_id = ? AND type = ?", env.vendor.ID, models.NotifyOrderPlaced))
	assert.Equal(t, []string{events.OrderCreated}, env.publisher.Keys())

	code := env.otp(t, order.ID)
	assert.Len(t, code, 6)

	// Wrong codes change nothing.
	for i := 0; i < 2; i++ {
		_, err := env.orders.VerifyOTP(ctx, env.vendor.ID, order.ID, "000000x")
		assert.ErrorIs(t, err, services.ErrOTPMismatch)
	}
	stored, err := env.orders.Get(ctx, &session.Session{AccountID: env.user.ID, Role: models.RoleUser}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, stored.Status)
	assert.False(t, stored.Otp.Verified)
	assert.Nil(t, stored.Payment)

	// Another vendor cannot confirm delivery.
	other := createVendor(t, env.db, "other@example.com")
	_, err = env.orders.VerifyOTP(ctx, other.ID, order.ID, code)
	assert.ErrorIs(t, err, services.ErrForbidden)

	delivered, err := env.orders.VerifyOTP(ctx, env.vendor.ID, order.ID, code)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, delivered.Status)
	require.NotNil(t, delivered.Payment)
	assert.Equal(t, models.PaymentPaid, delivered.Payment.Status)
	assert.True(t, decimal.NewFromInt(100).Equal(delivered.Payment.Amount))

	_, err = env.orders.VerifyOTP(ctx, env.vendor.ID, order.ID, code)
	assert.ErrorIs(t, err, services.ErrOTPAlreadyUsed)
	assert.Equal(t, int64(1), count(t, env.db, &models.Payment{}, "order_id = ?", order.ID))
	assert.Equal(t, []string{events.OrderCreated, events.OrderDelivered}, env.publisher.Keys())

	_, err = env.orders.Cancel(ctx, env.vendor.ID, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestOrderService_CancelRestoresStock(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "10", 5), variant("L", "20", 1))
	m, l := &shirt.Variants[0], &shirt.Variants[1]

	result := env.place(t, "50",
		services.OrderLine{ProductID: shirt.ID, VariantID: m.ID, Quantity: 3},
		services.OrderLine{ProductID: shirt.ID, VariantID: l.ID, Quantity: 1})
	order := result.Orders[0]
	assert.Equal(t, 2, reload(t, env.db, m).Stock)
	assert.Equal(t, models.InOrderReserved, reload(t, env.db, l).InOrder)

	cancelled, err := env.orders.Cancel(ctx, env.vendor.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	assert.Equal(t, 5, reload(t, env.db, m).Stock)
	restored := reload(t, env.db, l)
	assert.Equal(t, 1, restored.Stock)
	assert.Equal(t, models.InOrderRestored, restored.InOrder)
	assert.Equal(t, int64(1), count(t, env.db, &models.Notification{},
		"recipient_id = ? AND type = ?", env.user.ID, models.NotifyOrderCancelled))

	_, err = env.orders.Cancel(ctx, env.vendor.ID, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidState)
	assert.Equal(t, 5, reload(t, env.db, m).Stock)

	code := env.otp(t, order.ID)
	_, err = env.orders.VerifyOTP(ctx, env.vendor.ID, order.ID, code)
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestOrderService_VendorActionErrors(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "10", 10))
	line := services.OrderLine{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1}
	other := createVendor(t, env.db, "dewi@example.com")

	tests := []struct {
		name    string
		act     func(t *testing.T, order *models.Order) error
		wantErr error
	}{
		{
			name: "cancel by another vendor",
			act: func(t *testing.T, order *models.Order) error {
				_, err := env.orders.Cancel(ctx, other.ID, order.ID)
				return err
			},
			wantErr: services.ErrForbidden,
		},
		{
			name: "cancel of unknown order",
			act: func(*testing.T, *models.Order) error {
				_, err := env.orders.Cancel(ctx, env.vendor.ID, "00000000-0000-0000-0000-000000000000")
				return err
			},
			wantErr: services.ErrNotFound,
		},
		{
			name: "verify without code on record",
			act: func(t *testing.T, order *models.Order) error {
				require.NoError(t, env.db.Where("order_id = ?", order.ID).Delete(&models.OrderOtp{}).Error)
				_, err := env.orders.VerifyOTP(ctx, env.vendor.ID, order.ID, "123456")
				return err
			},
			wantErr: services.ErrOTPNotFound,
		},
		{
			name: "wrong code after delivery",
			act: func(t *testing.T, order *models.Order) error {
				_, err := env.orders.VerifyOTP(ctx, env.vendor.ID, order.ID, env.otp(t, order.ID))
				require.NoError(t, err)
				_, err = env.orders.VerifyOTP(ctx, env.vendor.ID, order.ID, "not-the-code")
				return err
			},
			wantErr: services.ErrOTPAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := env.place(t, "10", line).Orders[0]
			assert.ErrorIs(t, tt.act(t, order), tt.wantErr)
		})
	}
}

func TestOrderService_PlaceOrderRejects(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "50", 2))
	hat := createProduct(t, env.db, env.vendor.ID, "Hat", variant("One size", "5", 9))
	v := &shirt.Variants[0]

	tests := []struct {
		name    string
		req     services.PlaceOrderRequest
		wantErr error
	}{
		{
			name:    "total mismatch",
			req:     services.PlaceOrderRequest{Items: []services.OrderLine{{ProductID: shirt.ID, VariantID: v.ID, Quantity: 1}}, Address: "a", Total: total("49.99")},
			wantErr: services.ErrTotalMismatch,
		},
		{
			name:    "insufficient stock",
			req:     services.PlaceOrderRequest{Items: []services.OrderLine{{ProductID: shirt.ID, VariantID: v.ID, Quantity: 3}}, Address: "a", Total: total("150")},
			wantErr: services.ErrInsufficientStock,
		},
		{
			name:    "variant of another product",
			req:     services.PlaceOrderRequest{Items: []services.OrderLine{{ProductID: hat.ID, VariantID: v.ID, Quantity: 1}}, Address: "a", Total: total("50")},
			wantErr: services.ErrValidation,
		},
		{
			name:    "no address",
			req:     services.PlaceOrderRequest{Items: []services.OrderLine{{ProductID: shirt.ID, VariantID: v.ID, Quantity: 1}}, Total: total("50")},
			wantErr: services.ErrValidation,
		},
		{
			name:    "empty items",
			req:     services.PlaceOrderRequest{Address: "a", Total: total("0")},
			wantErr: services.ErrValidation,
		},
		{
			name:    "unknown variant",
			req:     services.PlaceOrderRequest{Items: []services.OrderLine{{ProductID: shirt.ID, VariantID: "missing", Quantity: 1}}, Address: "a", Total: total("50")},
			wantErr: services.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.PlaceOrder(ctx, env.user.ID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 2, reload(t, env.db, v).Stock)
	assert.Equal(t, int64(0), count(t, env.db, &models.Order{}, "user_id = ?", env.user.ID))
	assert.Empty(t, env.publisher.Keys())
}

func TestOrderService_SplitsByVendorAndClearsCart(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	second := createVendor(t, env.db, "citra@example.com")
	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "12.50", 4))
	mug := createProduct(t, env.db, second.ID, "Mug", variant("White", "7.25", 4))

	_, err := env.cart.Add(ctx, env.user.ID, shirt.ID, shirt.Variants[0].ID)
	require.NoError(t, err)
	_, err = env.cart.Add(ctx, env.user.ID, mug.ID, mug.Variants[0].ID)
	require.NoError(t, err)

	result := env.place(t, "32.25",
		services.OrderLine{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1},
		services.OrderLine{ProductID: mug.ID, VariantID: mug.Variants[0].ID, Quantity: 1},
		services.OrderLine{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1})

	require.Len(t, result.Orders, 2)
	assert.Len(t, result.OrderIDs, 2)
	assert.Equal(t, env.vendor.ID, result.Orders[0].VendorID)
	assert.True(t, decimal.RequireFromString("25").Equal(result.Orders[0].Total))
	assert.Len(t, result.Orders[0].Items, 1)
	assert.Equal(t, 2, result.Orders[0].Items[0].Quantity)
	assert.Equal(t, second.ID, result.Orders[1].VendorID)

	cart, err := env.cart.List(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	vendorOrders, err := env.orders.ListForVendor(ctx, second.ID, "pending")
	require.NoError(t, err)
	require.Len(t, vendorOrders, 1)
	assert.Nil(t, vendorOrders[0].Otp)

	_, err = env.orders.Get(ctx, &session.Session{AccountID: second.ID, Role: models.RoleVendor}, result.Orders[0].ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "10", 5))
	order := env.place(t, "10", services.OrderLine{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1}).Orders[0]

	updated, err := env.orders.UpdateStatus(ctx, env.vendor.ID, order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	_, err = env.orders.UpdateStatus(ctx, env.vendor.ID, order.ID, models.OrderProcessing)
	assert.ErrorIs(t, err, services.ErrInvalidState)

	_, err = env.orders.UpdateStatus(ctx, env.vendor.ID, order.ID, models.OrderDelivered)
	assert.ErrorIs(t, err, services.ErrValidation)
}
