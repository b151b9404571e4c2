package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	orders "github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/segmentio/kafka-go"
)

// Reader is the part of *kafka.Reader the consumer uses.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// OrderRefresher republishes the authoritative order list.
type OrderRefresher interface {
	Refresh(ctx context.Context) error
}

// Consumer turns order events into order feed refreshes.
type Consumer struct {
	orders OrderRefresher
	reader Reader
}

func NewConsumer(refresher OrderRefresher, topic string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "storefront-notify",
		MaxBytes: 10e6, // 10MB
	})
	return NewConsumerWithReader(refresher, reader)
}

func NewConsumerWithReader(refresher OrderRefresher, reader Reader) *Consumer {
	return &Consumer{orders: refresher, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("[notify] error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("[notify] error reading message: %v", err)
		return
	}

	var event orders.OrderEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Printf("[notify] error parsing message: %v", err)
		return
	}

	switch event.Type {
	case orders.EventOrderPlaced, orders.EventOrderStatusChanged:
	default:
		log.Printf("[notify] ignoring event type %q", event.Type)
		return
	}

	if err := c.orders.Refresh(ctx); err != nil {
		log.Printf("[notify] failed to refresh orders after %s for %s: %v", event.Type, event.OrderID, err)
	}
}
