package notify

import (
	"context"
	"sync"

	catalog "github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/aniskhan146/Cartify-sub000/internal/feed"
	orders "github.com/aniskhan146/Cartify-sub000/internal/orders/domain"
)

const DefaultLimit = 50

// Service keeps the most recent notifications, newest first.
type Service struct {
	mu        sync.Mutex
	items     []Notification
	limit     int
	threshold int
}

func NewService(threshold, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{limit: limit, threshold: threshold}
}

// WatchProducts blocks until ctx is done or the hub closes. The first
// snapshot is the baseline and raises nothing.
func (s *Service) WatchProducts(ctx context.Context, hub *feed.Hub[[]catalog.Product]) {
	watch(ctx, hub, func(prev, next []catalog.Product) []Notification {
		return LowStock(prev, next, s.threshold)
	}, s.add)
}

func (s *Service) WatchOrders(ctx context.Context, hub *feed.Hub[[]orders.Order]) {
	watch(ctx, hub, NewOrders, s.add)
}

func watch[T any](ctx context.Context, hub *feed.Hub[[]T], detect func(prev, next []T) []Notification, emit func(...Notification)) {
	ch, cancel := hub.Subscribe()
	defer cancel()

	var prev []T
	first := true
	for {
		select {
		case next, ok := <-ch:
			if !ok {
				return
			}
			if !first {
				emit(detect(prev, next)...)
			}
			prev, first = next, false
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) add(ns ...Notification) {
	if len(ns) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]Notification, 0, len(ns)+len(s.items))
	for i := len(ns) - 1; i >= 0; i-- {
		fresh = append(fresh, ns[i])
	}
	fresh = append(fresh, s.items...)
	if len(fresh) > s.limit {
		fresh = fresh[:s.limit]
	}
	s.items = fresh
}

// List returns a copy of the notifications and the unread count.
func (s *Service) List() ([]Notification, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]Notification(nil), s.items...)
	unread := 0
	for _, n := range out {
		if !n.Read {
			unread++
		}
	}
	return out, unread
}

func (s *Service) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
}
