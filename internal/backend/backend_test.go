package backend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestThrottleSpacesCalls(t *testing.T) {
	th := NewThrottle(20 * time.Millisecond)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := th.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected at least 40ms between three calls, got %v", elapsed)
	}
}

func TestThrottleZeroIntervalNeverWaits(t *testing.T) {
	var th *Throttle
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("expected nil throttle to pass, got %v", err)
	}
	if err := NewThrottle(0).Wait(context.Background()); err != nil {
		t.Fatalf("expected zero interval to pass, got %v", err)
	}
}

func TestThrottleWaitHonoursContext(t *testing.T) {
	th := NewThrottle(time.Hour)
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := th.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPollerRunsImmediatelyAndRepeats(t *testing.T) {
	var calls atomic.Int32
	p := StartPoller(context.Background(), 5*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	deadline := time.Now().Add(time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := p.StopWait(time.Second); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 calls, got %d", calls.Load())
	}
	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("expected no calls after stop")
	}
}

func TestPollerStopsWithParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := StartPoller(ctx, time.Hour, func(context.Context) {})
	cancel()
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected poller to exit when parent is cancelled")
	}
}

func TestPollerStopWaitTimesOut(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	p := StartPoller(context.Background(), time.Hour, func(context.Context) {
		close(started)
		<-release
	})
	<-started
	err := p.StopWait(10 * time.Millisecond)
	if !errors.Is(err, ErrJoinTimeout) {
		t.Fatalf("expected ErrJoinTimeout, got %v", err)
	}
	close(release)
	p.Wait()
}
