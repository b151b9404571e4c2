package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type mockOutbox struct {
	m         sync.Mutex
	events    []*domain.OutboxEvent
	processed []string
	fetchErr  error
}

func (o *mockOutbox) GetUnprocessedEvents(context.Context, int) ([]*domain.OutboxEvent, error) {
	o.m.Lock()
	defer o.m.Unlock()
	if o.fetchErr != nil {
		return nil, o.fetchErr
	}
	done := make(map[string]bool)
	for _, id := range o.processed {
		done[id] = true
	}
	var out []*domain.OutboxEvent
	for _, ev := range o.events {
		if !done[ev.ID] {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (o *mockOutbox) MarkEventAsProcessed(_ context.Context, id string) error {
	o.m.Lock()
	defer o.m.Unlock()
	o.processed = append(o.processed, id)
	return nil
}

type mockWriter struct {
	m        sync.Mutex
	messages []kafkaGo.Message
	failFor  string
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	w.m.Lock()
	defer w.m.Unlock()
	for _, msg := range msgs {
		if string(msg.Key) == w.failFor {
			return errors.New("broker unavailable")
		}
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error { return nil }

func newEvent(id, orderID string) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:          id,
		AggregateID: orderID,
		EventType:   domain.EventOrderPlaced,
		Payload:     json.RawMessage(fmt.Sprintf(`{"order_id":%q,"user_id":"u1"}`, orderID)),
		CreatedAt:   time.Now(),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	outbox := &mockOutbox{events: []*domain.OutboxEvent{newEvent("e1", "o1"), newEvent("e2", "o2")}}
	writer := &mockWriter{}
	sut := NewOutboxPollerWithWriter(outbox, writer)

	sut.processUnpublishedEvents(context.Background())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, "o1", string(writer.messages[0].Key))
	require.Len(t, writer.messages[0].Headers, 1)
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
	assert.Equal(t, domain.EventOrderPlaced, string(writer.messages[0].Headers[0].Value))
	assert.Equal(t, []string{"e1", "e2"}, outbox.processed)
}

func TestProcessUnpublishedEvents_FailedEventStaysForNextTick(t *testing.T) {
	outbox := &mockOutbox{events: []*domain.OutboxEvent{newEvent("e1", "o1"), newEvent("e2", "o2")}}
	writer := &mockWriter{failFor: "o1"}
	sut := NewOutboxPollerWithWriter(outbox, writer)

	sut.processUnpublishedEvents(context.Background())
	assert.Equal(t, []string{"e2"}, outbox.processed)

	writer.failFor = ""
	sut.processUnpublishedEvents(context.Background())
	assert.Equal(t, []string{"e2", "e1"}, outbox.processed)
}

func TestProcessUnpublishedEvents_FetchError(t *testing.T) {
	outbox := &mockOutbox{fetchErr: errors.New("db down")}
	writer := &mockWriter{}
	sut := NewOutboxPollerWithWriter(outbox, writer)

	sut.processUnpublishedEvents(context.Background())
	assert.Empty(t, writer.messages)
}

func TestRun_StopsOnCancel(t *testing.T) {
	outbox := &mockOutbox{events: []*domain.OutboxEvent{newEvent("e1", "o1")}}
	writer := &mockWriter{}
	sut := NewOutboxPollerWithWriter(outbox, writer)
	sut.eventTick = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sut.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		outbox.m.Lock()
		defer outbox.m.Unlock()
		return len(outbox.processed) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func setupKafka(t *testing.T) (string, func()) {
	if testing.Short() {
		t.Skip("skipping kafka container test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}
	return brokers[0], cleanup
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	outbox := &mockOutbox{events: []*domain.OutboxEvent{newEvent("e1", "order-123")}}
	sut := NewOutboxPoller(outbox, "order-events", brokerAddr)
	defer sut.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go sut.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    "order-events",
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "order-123", string(msg.Key))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "order-123", payload["order_id"])

	require.Eventually(t, func() bool {
		outbox.m.Lock()
		defer outbox.m.Unlock()
		return len(outbox.processed) == 1
	}, 10*time.Second, 100*time.Millisecond)
}
