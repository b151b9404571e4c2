package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/feed"
	orders "github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, stocks map[string]int) catalog.Product {
	p := catalog.Product{ID: id, Name: "Tee"}
	for vid, stock := range stocks {
		p.Variants = append(p.Variants, catalog.Variant{ID: vid, Name: vid, Stock: stock, Price: 10})
	}
	return p
}

func TestLowStock(t *testing.T) {
	prev := []catalog.Product{product("p1", map[string]int{"v1": 10, "v2": 3})}

	t.Run("crossing the threshold notifies", func(t *testing.T) {
		next := []catalog.Product{product("p1", map[string]int{"v1": 5, "v2": 3})}
		got := LowStock(prev, next, 5)
		require.Len(t, got, 1)
		assert.Equal(t, KindLowStock, got[0].Kind)
		assert.Equal(t, "p1", got[0].RefID)
		assert.Contains(t, got[0].Message, "5 left")
	})

	t.Run("already low stays quiet", func(t *testing.T) {
		next := []catalog.Product{product("p1", map[string]int{"v1": 10, "v2": 1})}
		assert.Empty(t, LowStock(prev, next, 5))
	})

	t.Run("new low variant notifies", func(t *testing.T) {
		next := []catalog.Product{product("p1", map[string]int{"v1": 10, "v2": 3, "v3": 0})}
		got := LowStock(prev, next, 5)
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Message, "v3")
	})

	t.Run("restock stays quiet", func(t *testing.T) {
		next := []catalog.Product{product("p1", map[string]int{"v1": 10, "v2": 30})}
		assert.Empty(t, LowStock(prev, next, 5))
	})
}

func TestNewOrders(t *testing.T) {
	prev := []orders.Order{{ID: "o1", Status: orders.OrderStatusPending}}
	next := []orders.Order{
		{ID: "o2", CustomerName: "Rahim", Total: 1050, Items: []orders.OrderItem{{Quantity: 2}}},
		{ID: "o1", Status: orders.OrderStatusShipped},
	}

	got := NewOrders(prev, next)
	require.Len(t, got, 1)
	assert.Equal(t, KindNewOrder, got[0].Kind)
	assert.Equal(t, "o2", got[0].RefID)
	assert.Contains(t, got[0].Message, "Rahim")
}

func TestService_BoundedNewestFirst(t *testing.T) {
	sut := NewService(5, 3)
	sut.add(newNotification(KindNewOrder, "a", "a"), newNotification(KindNewOrder, "b", "b"))
	sut.add(newNotification(KindNewOrder, "c", "c"), newNotification(KindNewOrder, "d", "d"))

	items, unread := sut.List()
	require.Len(t, items, 3)
	assert.Equal(t, 3, unread)
	assert.Equal(t, []string{"d", "c", "b"}, []string{items[0].RefID, items[1].RefID, items[2].RefID})

	sut.MarkAllRead()
	_, unread = sut.List()
	assert.Equal(t, 0, unread)

	sut.add(newNotification(KindLowStock, "e", "e"))
	items, unread = sut.List()
	assert.Equal(t, 1, unread)
	assert.Equal(t, "e", items[0].RefID)
}

func TestService_WatchOrders(t *testing.T) {
	hub := feed.NewHub[[]orders.Order]()
	hub.Publish([]orders.Order{{ID: "o1"}})
	sut := NewService(5, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		sut.WatchOrders(ctx, hub)
		close(done)
	}()

	// the baseline snapshot raises nothing
	time.Sleep(50 * time.Millisecond)
	items, _ := sut.List()
	assert.Empty(t, items)

	hub.Publish([]orders.Order{{ID: "o2"}, {ID: "o1"}})
	require.Eventually(t, func() bool {
		items, _ := sut.List()
		return len(items) == 1 && items[0].RefID == "o2"
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestService_WatchProductsStopsWhenHubCloses(t *testing.T) {
	hub := feed.NewHub[[]catalog.Product]()
	hub.Publish([]catalog.Product{product("p1", map[string]int{"v1": 10})})
	sut := NewService(5, 10)

	done := make(chan struct{})
	go func() {
		sut.WatchProducts(context.Background(), hub)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	hub.Publish([]catalog.Product{product("p1", map[string]int{"v1": 2})})
	require.Eventually(t, func() bool {
		items, _ := sut.List()
		return len(items) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

type mockReader struct {
	m        sync.Mutex
	messages []kafka.Message
}

func (r *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.m.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.m.Unlock()
		return msg, nil
	}
	r.m.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *mockReader) Close() error { return nil }

type mockRefresher struct {
	m     sync.Mutex
	calls int
	err   error
}

func (r *mockRefresher) Refresh(context.Context) error {
	r.m.Lock()
	defer r.m.Unlock()
	r.calls++
	return r.err
}

func (r *mockRefresher) count() int {
	r.m.Lock()
	defer r.m.Unlock()
	return r.calls
}

func eventMessage(t *testing.T, typ string) kafka.Message {
	b, err := json.Marshal(orders.OrderEvent{Type: typ, OrderID: "o1"})
	require.NoError(t, err)
	return kafka.Message{Key: []byte("o1"), Value: b}
}

func TestConsumer_RefreshesOnOrderEvents(t *testing.T) {
	reader := &mockReader{messages: []kafka.Message{
		eventMessage(t, orders.EventOrderPlaced),
		{Value: []byte("not json")},
		eventMessage(t, "something.else"),
		eventMessage(t, orders.EventOrderStatusChanged),
	}}
	refresher := &mockRefresher{}
	sut := NewConsumerWithReader(refresher, reader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sut.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return refresher.count() == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestConsumer_RefreshErrorIsLogged(t *testing.T) {
	reader := &mockReader{messages: []kafka.Message{eventMessage(t, orders.EventOrderPlaced)}}
	refresher := &mockRefresher{err: errors.New("db down")}
	sut := NewConsumerWithReader(refresher, reader)

	sut.processMessage(context.Background())
	assert.Equal(t, 1, refresher.count())
}
