package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Config holds the Kafka brokers and the topic events are written to.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes events to a single topic, keyed by routing key.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates a Publisher. Connections are opened lazily by the writer.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}, nil
}

// Publish writes one message; the routing key is also carried as an "event" header.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte(routingKey),
		Value:   body,
		Headers: []kafkago.Header{{Key: "event", Value: []byte(routingKey)}},
		Time:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to kafka: %w", routingKey, err)
	}
	log.Printf("Sent %s event to kafka topic %s", routingKey, p.writer.Topic)
	return nil
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
