package backend

import (
	"context"
	"sync"
	"time"
)

// Throttle spaces successive operations at least interval apart.
type Throttle struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

// NewThrottle returns a throttle; a non-positive interval never waits.
func NewThrottle(interval time.Duration) *Throttle {
	if interval < 0 {
		interval = 0
	}
	return &Throttle{interval: interval}
}

// Wait reserves the next slot and sleeps until it arrives. It returns
// ctx.Err() if ctx ends first; the slot stays reserved either way.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval == 0 {
		return ctx.Err()
	}
	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	t.next = slot.Add(t.interval)
	t.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
