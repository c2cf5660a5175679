package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Webhook event types acted upon.
const (
	EventSucceeded = "payment_intent.succeeded"
	EventFailed    = "payment_intent.payment_failed"
)

var (
	// ErrNotConfigured is returned when no processor credentials are set.
	ErrNotConfigured = errors.New("payment processor is not configured")
	// ErrInvalidSignature is returned for webhook payloads that fail verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// IntentRequest asks the processor to collect amount for an order.
type IntentRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
}

// Intent is a created payment intent.
type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook notification about a payment intent.
type Event struct {
	Type            string
	PaymentIntentID string
	OrderID         string
}

// Gateway is the external payment processor.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// StripeGateway implements Gateway with Stripe PaymentIntents.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates a gateway. An empty secretKey yields a gateway
// that refuses to create intents.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	g := &StripeGateway{webhookSecret: webhookSecret}
	if secretKey != "" {
		g.api = &client.API{}
		g.api.Init(secretKey, nil)
	}
	return g
}

// zeroDecimal lists the currencies the processor charges in whole units.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// MinorUnits converts amount to the smallest unit of currency.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimal[strings.ToLower(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

// CreateIntent creates a PaymentIntent tagged with the order ID.
func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(req.Amount, req.Currency)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseWebhook verifies the signature and decodes PaymentIntent events.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}
	out.PaymentIntentID = pi.ID
	out.OrderID = pi.Metadata["order_id"]
	return out, nil
}
