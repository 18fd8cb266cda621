// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

const EventOrderPlaced = "order.placed"

type Event struct {
	EventID   string       `json:"event_id"`
	Type      string       `json:"type"`
	OrderID   uint         `json:"order_id"`
	UserID    uint         `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
	Payload   OrderPayload `json:"payload"`
}

type OrderPayload struct {
	Total           float64            `json:"total"`
	Status          models.OrderStatus `json:"status"`
	ShippingAddress string             `json:"shipping_address"`
	Items           []models.OrderItem `json:"items"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per committed order, keyed by order id so
// events for the same order land on the same partition.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewPublisher returns nil when no brokers are configured.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		log.Println("Order events disabled - KAFKA_BROKERS not provided")
		return nil
	}
	log.Printf("Publishing order events to topic %q", topic)
	return newPublisher(NewWriter(brokers, topic))
}

func newPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, timeout: 5 * time.Second}
}

func NewOrderPlaced(order *models.Order) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      EventOrderPlaced,
		OrderID:   order.ID,
		UserID:    order.UserID,
		CreatedAt: order.CreatedAt,
		Payload: OrderPayload{
			Total:           order.Total,
			Status:          order.Status,
			ShippingAddress: order.ShippingAddress,
			Items:           order.Items,
		},
	}
}

// OrderPlaced implements shop.OrderListener.
func (p *Publisher) OrderPlaced(ctx context.Context, _ *models.User, order *models.Order) error {
	return p.Publish(ctx, NewOrderPlaced(order))
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
		Time: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("publish %s for order %d: %w", event.Type, event.OrderID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
