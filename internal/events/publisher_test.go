package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	pub := NewKafkaPublisher(writer)

	event := New(OrderCreated, OrderKey(7), OrderCreatedPayload{OrderID: 7, UserID: 1, TotalPrice: "800", PaymentMode: "online", ItemCount: 2})
	require.NoError(t, pub.Publish(context.Background(), event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "order-7", string(msg.Key))
	assert.Equal(t, "order.created", string(msg.Headers[0].Value))

	var decoded struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "order.created", decoded.Type)
	assert.Equal(t, "800", decoded.Payload["total_price"])

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	pub := NewKafkaPublisher(&fakeWriter{err: errors.New("broker down")})

	err := pub.Publish(context.Background(), New(RatingCreated, PizzaKey(1), RatingCreatedPayload{}))
	assert.Error(t, err)
}

func TestPublishAsync(t *testing.T) {
	writer := &fakeWriter{}
	PublishAsync(NewKafkaPublisher(writer), New(OrderStatusChanged, OrderKey(3), OrderStatusPayload{OrderID: 3}), time.Second)

	assert.Eventually(t, func() bool { return writer.count() == 1 }, time.Second, 5*time.Millisecond)

	PublishAsync(nil, Event{}, time.Second)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "pizza-delivery.events")
	assert.Equal(t, "pizza-delivery.events", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}
