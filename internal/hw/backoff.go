package hw

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig controls how often a hardware handshake is retried.
type BackoffConfig struct {
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// MaxInterval caps the delay between retries.
	MaxInterval time.Duration
	// Multiplier is the factor by which the delay grows.
	Multiplier float64
	// MaxAttempts bounds the number of handshakes. Zero means one attempt.
	MaxAttempts int
	// RandomizationFactor adds jitter; 0.5 means ±50%.
	RandomizationFactor float64
}

// DefaultBackoffConfig suits a daemon that may start before pigpiod or the
// GPIO character device is ready.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialInterval:     250 * time.Millisecond,
		MaxInterval:         4 * time.Second,
		Multiplier:          2.0,
		MaxAttempts:         6,
		RandomizationFactor: 0.1,
	}
}

// Delay returns the wait before retry number attempt (starting at 1).
func (c BackoffConfig) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := c.Multiplier
	if mult <= 0 {
		mult = 2.0
	}
	interval := float64(c.InitialInterval) * math.Pow(mult, float64(attempt-1))
	if c.MaxInterval > 0 && interval > float64(c.MaxInterval) {
		interval = float64(c.MaxInterval)
	}
	if c.RandomizationFactor > 0 {
		delta := c.RandomizationFactor * interval
		interval = interval - delta + rand.Float64()*(2*delta)
	}
	return time.Duration(interval)
}

// Connect runs open until it succeeds, the attempts are exhausted or ctx is
// cancelled. Only the initial handshake goes through here; failures after
// startup are not retried.
func Connect(ctx context.Context, cfg BackoffConfig, open func() error) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = open(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		timer := time.NewTimer(cfg.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %v", ErrHardwareUnavailable, ctx.Err())
		case <-timer.C:
		}
	}
	if errors.Is(err, ErrHardwareUnavailable) {
		return fmt.Errorf("after %d attempts: %w", attempts, err)
	}
	return fmt.Errorf("%w: after %d attempts: %v", ErrHardwareUnavailable, attempts, err)
}
