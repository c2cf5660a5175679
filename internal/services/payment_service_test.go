package services_test

import (
	"context"
	"testing"

	"pasar/internal/events"
	"pasar/internal/models"
	"pasar/internal/payments"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGateway is a mock implementation of payments.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Intent), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*payments.Event, error) {
	args := m.Called(string(payload), signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Event), args.Error(1)
}

func TestPaymentService_CardFlow(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	gateway := new(MockGateway)
	publisher := &recordingPublisher{}
	svc := services.NewPaymentService(repositories.NewGORMOrderRepository(env.db), repositories.NewGORMPaymentRepository(env.db),
		repositories.NewGORMNotificationRepository(env.db), gateway, publisher, "usd")

	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "19.99", 5))
	result, err := env.orders.PlaceOrder(ctx, env.user.ID, services.PlaceOrderRequest{
		Items:         []services.OrderLine{{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1}},
		Address:       "Jl. Merdeka 1",
		Total:         total("19.99"),
		PaymentMethod: models.PaymentCard,
	})
	require.NoError(t, err)
	order := result.Orders[0]

	gateway.On("CreateIntent", mock.MatchedBy(func(req payments.IntentRequest) bool {
		return req.OrderID == order.ID && req.Amount.Equal(decimal.RequireFromString("19.99")) && req.Currency == "usd"
	})).Return(&payments.Intent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil).Once()

	intent, err := svc.CreateIntent(ctx, env.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	assert.Equal(t, "19.99", intent.Amount)

	_, err = svc.CreateIntent(ctx, "someone-else", order.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	gateway.On("ParseWebhook", "bad", "sig").Return(nil, payments.ErrInvalidSignature).Once()
	assert.ErrorIs(t, svc.HandleWebhook(ctx, []byte("bad"), "sig"), services.ErrValidation)

	gateway.On("ParseWebhook", "ok", "sig").
		Return(&payments.Event{Type: payments.EventSucceeded, PaymentIntentID: "pi_123", OrderID: order.ID}, nil).Twice()
	require.NoError(t, svc.HandleWebhook(ctx, []byte("ok"), "sig"))
	require.NoError(t, svc.HandleWebhook(ctx, []byte("ok"), "sig"))

	paid, err := env.orders.ListForVendor(ctx, env.vendor.ID, "")
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, models.OrderProcessing, paid[0].Status)
	require.NotNil(t, paid[0].Payment)
	assert.Equal(t, models.PaymentPaid, paid[0].Payment.Status)
	assert.Equal(t, int64(1), count(t, env.db, &models.Notification{}, "recipient_id = ? AND type = ?", env.vendor.ID, models.NotifyPaymentPaid))
	assert.Contains(t, publisher.Keys(), events.PaymentSucceeded)

	_, err = svc.CreateIntent(ctx, env.user.ID, order.ID)
	assert.ErrorIs(t, err, services.ErrConflict)

	gateway.On("ParseWebhook", "unknown", "sig").
		Return(&payments.Event{Type: payments.EventSucceeded, PaymentIntentID: "pi_missing"}, nil).Once()
	assert.NoError(t, svc.HandleWebhook(ctx, []byte("unknown"), "sig"))
	gateway.AssertExpectations(t)
}

func TestPaymentService_RejectsCashOrders(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	gateway := new(MockGateway)
	svc := services.NewPaymentService(repositories.NewGORMOrderRepository(env.db), repositories.NewGORMPaymentRepository(env.db),
		repositories.NewGORMNotificationRepository(env.db), gateway, nil, "usd")

	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "5", 5))
	order := env.place(t, "5", services.OrderLine{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1}).Orders[0]

	_, err := svc.CreateIntent(ctx, env.user.ID, order.ID)
	assert.ErrorIs(t, err, services.ErrValidation)
	gateway.AssertNotCalled(t, "CreateIntent", mock.Anything)
}

func newCardOrder(t *testing.T, env *orderEnv, gateway *MockGateway) (*services.PaymentService, *models.Order) {
	t.Helper()
	svc := services.NewPaymentService(repositories.NewGORMOrderRepository(env.db), repositories.NewGORMPaymentRepository(env.db),
		repositories.NewGORMNotificationRepository(env.db), gateway, nil, "usd")
	shirt := createProduct(t, env.db, env.vendor.ID, "Shirt", variant("M", "12.50", 5))
	result, err := env.orders.PlaceOrder(context.Background(), env.user.ID, services.PlaceOrderRequest{
		Items:         []services.OrderLine{{ProductID: shirt.ID, VariantID: shirt.Variants[0].ID, Quantity: 1}},
		Address:       "Jl. Merdeka 1",
		Total:         total("12.50"),
		PaymentMethod: models.PaymentCard,
	})
	require.NoError(t, err)
	return svc, result.Orders[0]
}

func TestPaymentService_SettlesSupersededIntent(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	gateway := new(MockGateway)
	svc, order := newCardOrder(t, env, gateway)

	gateway.On("CreateIntent", mock.Anything).Return(&payments.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()
	gateway.On("CreateIntent", mock.Anything).Return(&payments.Intent{ID: "pi_2", ClientSecret: "pi_2_secret"}, nil).Once()
	_, err := svc.CreateIntent(ctx, env.user.ID, order.ID)
	require.NoError(t, err)
	_, err = svc.CreateIntent(ctx, env.user.ID, order.ID)
	require.NoError(t, err)

	gateway.On("ParseWebhook", "failed-1", "sig").
		Return(&payments.Event{Type: payments.EventFailed, PaymentIntentID: "pi_1", OrderID: order.ID}, nil).Once()
	require.NoError(t, svc.HandleWebhook(ctx, []byte("failed-1"), "sig"))
	payment, err := repositories.NewGORMPaymentRepository(env.db).GetByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)

	gateway.On("ParseWebhook", "paid-1", "sig").
		Return(&payments.Event{Type: payments.EventSucceeded, PaymentIntentID: "pi_1", OrderID: order.ID}, nil).Once()
	require.NoError(t, svc.HandleWebhook(ctx, []byte("paid-1"), "sig"))

	payment, err = repositories.NewGORMPaymentRepository(env.db).GetByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, payment.Status)
	assert.Equal(t, "pi_1", payment.ExternalID)
	settled, err := repositories.NewGORMOrderRepository(env.db).GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, settled.Status)
	assert.Equal(t, int64(1), count(t, env.db, &models.Notification{}, "recipient_id = ? AND type = ?", env.vendor.ID, models.NotifyPaymentPaid))
	gateway.AssertExpectations(t)
}

func TestPaymentService_PaymentForCancelledOrderIsRefunded(t *testing.T) {
	env := newOrderEnv(t)
	ctx := context.Background()
	gateway := new(MockGateway)
	svc, order := newCardOrder(t, env, gateway)

	gateway.On("CreateIntent", mock.Anything).Return(&payments.Intent{ID: "pi_late", ClientSecret: "secret"}, nil).Once()
	_, err := svc.CreateIntent(ctx, env.user.ID, order.ID)
	require.NoError(t, err)
	_, err = env.orders.Cancel(ctx, env.vendor.ID, order.ID)
	require.NoError(t, err)

	gateway.On("ParseWebhook", "late", "sig").
		Return(&payments.Event{Type: payments.EventSucceeded, PaymentIntentID: "pi_late", OrderID: order.ID}, nil).Twice()
	require.NoError(t, svc.HandleWebhook(ctx, []byte("late"), "sig"))
	require.NoError(t, svc.HandleWebhook(ctx, []byte("late"), "sig"))

	payment, err := repositories.NewGORMPaymentRepository(env.db).GetByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, payment.Status)
	cancelled, err := repositories.NewGORMOrderRepository(env.db).GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, int64(0), count(t, env.db, &models.Notification{}, "recipient_id = ? AND type = ?", env.vendor.ID, models.NotifyPaymentPaid))
	gateway.AssertExpectations(t)
}
