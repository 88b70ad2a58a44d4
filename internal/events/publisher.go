package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	PaymentUpdated     Type = "order.payment_updated"
	RatingCreated      Type = "rating.created"
)

// Event is the envelope written to the topic. Key picks the partition so all
// events of one order (or pizza) stay ordered.
type Event struct {
	Type       Type        `json:"type"`
	Key        string      `json:"-"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func New(eventType Type, key string, payload interface{}) Event {
	return Event{Type: eventType, Key: key, OccurredAt: time.Now().UTC(), Payload: payload}
}

func OrderKey(orderID uint) string {
	return fmt.Sprintf("order-%d", orderID)
}

func PizzaKey(pizzaID uint) string {
	return fmt.Sprintf("pizza-%d", pizzaID)
}

type OrderCreatedPayload struct {
	OrderID           uint   `json:"order_id"`
	UserID            uint   `json:"user_id"`
	DeliveryPartnerID *uint  `json:"delivery_partner_id"`
	TotalPrice        string `json:"total_price"`
	PaymentMode       string `json:"payment_mode"`
	ItemCount         int    `json:"item_count"`
}

type OrderStatusPayload struct {
	OrderID       uint   `json:"order_id"`
	UserID        uint   `json:"user_id"`
	PartnerID     *uint  `json:"partner_id,omitempty"`
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

type RatingCreatedPayload struct {
	RatingID uint `json:"rating_id"`
	UserID   uint `json:"user_id"`
	PizzaID  uint `json:"pizza_id"`
	Rating   int  `json:"rating"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		logger.Error("Failed to publish event", err, map[string]interface{}{
			"event_type": event.Type,
			"key":        event.Key,
		})
		return err
	}

	logger.Debug("Event published", map[string]interface{}{
		"event_type": event.Type,
		"key":        event.Key,
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

// PublishAsync fires the event on a detached context so a cancelled request
// does not abort the write. Failures are only logged.
func PublishAsync(p Publisher, event Event, timeout time.Duration) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			logger.Warn("Event dropped", map[string]interface{}{
				"event_type": event.Type,
				"error":      err.Error(),
			})
		}
	}()
}
