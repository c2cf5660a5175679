package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pasar/internal/models"
	"pasar/pkg/kafka"
	"pasar/pkg/rabbitmq"

	"github.com/shopspring/decimal"
)

// Routing keys of the domain events.
const (
	OrderCreated     = "order.created"
	OrderCancelled   = "order.cancelled"
	OrderDelivered   = "order.delivered"
	PaymentSucceeded = "payment.succeeded"
)

// Publisher delivers an encoded event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }
func (Nop) Close() error                                  { return nil }

// OrderEvent is the payload of every order and payment event.
type OrderEvent struct {
	OrderID    string             `json:"orderId"`
	UserID     string             `json:"userId"`
	VendorID   string             `json:"vendorId"`
	Status     models.OrderStatus `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// NewOrderEvent describes the current state of order.
func NewOrderEvent(order *models.Order) OrderEvent {
	return OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		VendorID:   order.VendorID,
		Status:     order.Status,
		Total:      order.Total,
		OccurredAt: time.Now().UTC(),
	}
}

// Emit publishes event as JSON. Failures are logged and never returned:
// events are best effort and must not fail the request that caused them.
func Emit(ctx context.Context, pub Publisher, routingKey string, event interface{}) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := pub.Publish(ctx, routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

// Options selects and configures the broker.
type Options struct {
	Broker       string
	RabbitMQURL  string
	KafkaBrokers []string
	Topic        string
}

// New connects the publisher named by opts.Broker ("none", "rabbitmq" or "kafka").
func New(opts Options) (Publisher, error) {
	switch opts.Broker {
	case "", "none":
		return Nop{}, nil
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: opts.RabbitMQURL, Exchange: opts.Topic})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "kafka":
		pub, err := kafka.NewPublisher(kafka.Config{Brokers: opts.KafkaBrokers, Topic: opts.Topic})
		if err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("unsupported events broker %q", opts.Broker)
	}
}
