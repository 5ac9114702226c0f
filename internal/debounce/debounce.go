// Package debounce collapses bursts of calls per key into the last one.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a call replaced by a newer call for the same key.
var ErrSuperseded = errors.New("debounce: superseded by a newer call")

type pending struct {
	cancel chan struct{}
}

// Debouncer runs fn only after no newer call for the same key arrived within delay.
// A superseded call stops its timer and returns immediately.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*pending
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, pending: make(map[string]*pending)}
}

func (d *Debouncer) Delay() time.Duration { return d.delay }

// Do waits out the debounce window for key, then runs fn with ctx.
func (d *Debouncer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	p := &pending{cancel: make(chan struct{})}

	d.mu.Lock()
	if prev, ok := d.pending[key]; ok {
		close(prev.cancel)
	}
	d.pending[key] = p
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-p.cancel:
		return ErrSuperseded
	case <-ctx.Done():
		d.release(key, p)
		return ctx.Err()
	case <-timer.C:
	}

	if !d.release(key, p) {
		// Lost the race against a newer call that arrived as the timer fired.
		return ErrSuperseded
	}
	return fn(ctx)
}

// Cancel supersedes any pending call for key without scheduling a new one.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.pending[key]; ok {
		close(prev.cancel)
		delete(d.pending, key)
	}
}

// release removes p if it is still the pending call for key.
func (d *Debouncer) release(key string, p *pending) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending[key] != p {
		return false
	}
	delete(d.pending, key)
	return true
}
