package suggest

import (
	"context"
	"sync"
	"time"
)

// Debouncer delays a task per key. Starting a new task for a key cancels the
// one still pending or running under that key.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	seq     uint64
	pending map[string]pendingCall
}

type pendingCall struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, pending: make(map[string]pendingCall)}
}

// Debounce waits out the delay and then runs fn. A superseded call returns
// context.Canceled and fn's context is cancelled.
func Debounce[T any](ctx context.Context, d *Debouncer, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	ctx, seq := d.start(ctx, key)
	defer d.finish(key, seq)

	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	return fn(ctx)
}

func (d *Debouncer) start(parent context.Context, key string) (context.Context, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.cancel()
	}
	d.seq++
	ctx, cancel := context.WithCancel(parent)
	d.pending[key] = pendingCall{seq: d.seq, cancel: cancel}
	return ctx, d.seq
}

func (d *Debouncer) finish(key string, seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.pending[key]; ok && cur.seq == seq {
		cur.cancel()
		delete(d.pending, key)
	}
}

// Pending reports how many keys have a task waiting or running.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
