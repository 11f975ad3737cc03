package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

var errSuperseded = errors.New("superseded")

type pending struct {
	cancel context.CancelCauseFunc
}

// Debouncer delays a call and lets a newer call with the same key cancel
// both the wait and the in-flight work of the older one. The older caller
// gets apperrors.ErrSuperseded.
type Debouncer[T any] struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pending
}

// NewDebouncer creates a debouncer that waits delay before running a call.
func NewDebouncer[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{
		delay:   delay,
		pending: make(map[string]*pending),
	}
}

// Do waits out the delay and runs fn, unless a newer Do with the same key
// arrives first.
func (d *Debouncer[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithCancelCause(ctx)
	entry := &pending{cancel: cancel}

	d.mu.Lock()
	if prev, ok := d.pending[key]; ok {
		prev.cancel(errSuperseded)
	}
	d.pending[key] = entry
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		if d.pending[key] == entry {
			delete(d.pending, key)
		}
		d.mu.Unlock()
		cancel(nil)
	}()

	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return zero, d.canceled(ctx)
		case <-timer.C:
		}
	}

	v, err := fn(ctx)
	if ctx.Err() != nil {
		return zero, d.canceled(ctx)
	}
	return v, err
}

// Pending returns the number of keys with a call waiting or running.
func (d *Debouncer[T]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer[T]) canceled(ctx context.Context) error {
	if errors.Is(context.Cause(ctx), errSuperseded) {
		return apperrors.Superseded()
	}
	return ctx.Err()
}
