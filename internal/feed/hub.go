// Package feed provides latest-value subscriptions and snapshot diffing.
package feed

import "sync"

// Hub fans the most recent snapshot out to subscribers. Each subscriber sees
// a stream of whole snapshots; a slow subscriber skips stale ones and always
// ends with the newest.
type Hub[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	subs   map[chan T]struct{}
	closed bool
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[chan T]struct{})}
}

// Publish replaces the current snapshot. It never blocks.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest = v
	h.has = true
	for ch := range h.subs {
		offer(ch, v)
	}
}

// offer replaces whatever is waiting in the one-slot buffer.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// Subscribe returns a channel that first receives the current snapshot, if
// any, and an idempotent cancel func that closes it.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	if h.has {
		ch <- h.latest
	}
	h.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

func (h *Hub[T]) Latest() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.has
}

// Close ends every subscription.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
