package rabbitmq

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	// amqp channels must not be used by several goroutines at once.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// QueueName is the durable queue bound to every order and payment event.
const QueueName = "order_queue"

// NewClient connects to RabbitMQ, declares the topic exchange and binds the
// order queue to it.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = "pasar.events"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected, exchange %s bound to %s", cfg.Exchange, QueueName)

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	_, err = ch.QueueDeclare(
		QueueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", QueueName, err)
	}

	for _, key := range []string{"order.*", "payment.*"} {
		if err := ch.QueueBind(QueueName, key, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", QueueName, key, err)
		}
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to the exchange under routingKey.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf(" [x] Sent %s event: %s", routingKey, body)
	return nil
}
