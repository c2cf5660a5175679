package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pasar/internal/events"
	"pasar/internal/models"
	"pasar/internal/payments"
	"pasar/internal/repositories"
)

// PaymentService collects card payments through the payment processor.
type PaymentService struct {
	orders        repositories.OrderRepository
	paymentRepo   repositories.PaymentRepository
	notifications repositories.NotificationRepository
	gateway       payments.Gateway
	publisher     events.Publisher
	currency      string
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(orders repositories.OrderRepository, paymentRepo repositories.PaymentRepository,
	notifications repositories.NotificationRepository, gateway payments.Gateway, publisher events.Publisher, currency string) *PaymentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &PaymentService{
		orders:        orders,
		paymentRepo:   paymentRepo,
		notifications: notifications,
		gateway:       gateway,
		publisher:     publisher,
		currency:      currency,
	}
}

// IntentResult is what the storefront needs to confirm a card payment.
type IntentResult struct {
	PaymentID    string `json:"paymentId"`
	ClientSecret string `json:"clientSecret"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
}

// CreateIntent starts a card payment for an unpaid CARD order of the user.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, orderID string) (*IntentResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, domainErr(err)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", ErrForbidden, orderID)
	}
	if order.PaymentMethod != models.PaymentCard {
		return nil, invalid("order %s is not paid by card", orderID)
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidState, orderID, order.Status)
	}
	if order.Payment != nil && order.Payment.Status == models.PaymentPaid {
		return nil, fmt.Errorf("%w: order %s is already paid", ErrConflict, orderID)
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.IntentRequest{
		OrderID:  order.ID,
		Amount:   order.Total,
		Currency: s.currency,
	})
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		OrderID:    order.ID,
		Provider:   "stripe",
		Method:     models.PaymentCard,
		ExternalID: intent.ID,
		Amount:     order.Total,
		Currency:   s.currency,
	}
	if err := s.paymentRepo.UpsertPending(ctx, payment); err != nil {
		return nil, err
	}
	return &IntentResult{
		PaymentID:    intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       order.Total.StringFixed(2),
		Currency:     s.currency,
	}, nil
}

// HandleWebhook applies a signed processor event. Unknown event types and
// unknown payment intents are acknowledged without changes. A success for an
// intent superseded by a later one of the same order still settles the order.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return err
	}

	switch event.Type {
	case payments.EventSucceeded:
		payment, applied, err := s.paymentRepo.MarkSucceeded(ctx, event.PaymentIntentID, event.OrderID)
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Webhook for unknown payment intent %s (order %s) ignored", event.PaymentIntentID, event.OrderID)
			return nil
		}
		if err != nil {
			return err
		}
		if applied && payment.Status == models.PaymentRefunded {
			log.Printf("Payment %s arrived for cancelled order %s, marked for refund", payment.ExternalID, payment.OrderID)
			return nil
		}
		if applied {
			s.paid(ctx, payment)
		}
	case payments.EventFailed:
		_, err := s.paymentRepo.MarkFailed(ctx, event.PaymentIntentID, event.OrderID)
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Webhook for unknown payment intent %s (order %s) ignored", event.PaymentIntentID, event.OrderID)
			return nil
		}
		return err
	default:
		log.Printf("Unhandled webhook event type %s", event.Type)
	}
	return nil
}

// paid notifies the vendor and publishes the payment event.
func (s *PaymentService) paid(ctx context.Context, payment *models.Payment) {
	order, err := s.orders.GetByID(ctx, payment.OrderID)
	if err != nil {
		log.Printf("Payment %s recorded but order %s could not be loaded: %v", payment.ExternalID, payment.OrderID, err)
		return
	}
	err = s.notifications.Create(ctx, &models.Notification{
		RecipientRole: models.RoleVendor,
		RecipientID:   order.VendorID,
		Type:          models.NotifyPaymentPaid,
		Content:       fmt.Sprintf("Payment of %s %s received for order #%s", payment.Amount.StringFixed(2), payment.Currency, shortID(order.ID)),
	})
	if err != nil {
		log.Printf("Failed to notify vendor %s of payment: %v", order.VendorID, err)
	}
	events.Emit(ctx, s.publisher, events.PaymentSucceeded, events.NewOrderEvent(order))
}
