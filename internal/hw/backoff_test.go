package hw

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	cfg := BackoffConfig{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     40 * time.Millisecond,
		Multiplier:      2,
	}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 20 * time.Millisecond},
		{3, 40 * time.Millisecond},
		{4, 40 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := cfg.Delay(tt.attempt); got != tt.want {
			t.Fatalf("expected delay %v for attempt %d, got %v", tt.want, tt.attempt, got)
		}
	}
}

func TestConnectRetriesUntilSuccess(t *testing.T) {
	cfg := BackoffConfig{InitialInterval: time.Millisecond, MaxAttempts: 5}
	calls := 0
	err := Connect(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("daemon not ready")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestConnectWrapsExhaustedAttempts(t *testing.T) {
	cfg := BackoffConfig{InitialInterval: time.Millisecond, MaxAttempts: 2}
	calls := 0
	err := Connect(context.Background(), cfg, func() error {
		calls++
		return errors.New("no such device")
	})
	if !errors.Is(err, ErrHardwareUnavailable) {
		t.Fatalf("expected ErrHardwareUnavailable, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestConnectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := BackoffConfig{InitialInterval: time.Hour, MaxAttempts: 3}
	err := Connect(ctx, cfg, func() error { return errors.New("busy") })
	if !errors.Is(err, ErrHardwareUnavailable) {
		t.Fatalf("expected ErrHardwareUnavailable, got %v", err)
	}
}
