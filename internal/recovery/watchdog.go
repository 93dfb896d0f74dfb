// Package recovery restarts the radio service when both knob buttons are
// held down, for when the main process stops responding to input. It runs
// as its own process.
package recovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/piradio/internal/backend"
	"github.com/atomicstack/piradio/internal/hw"
	"github.com/atomicstack/piradio/internal/logging"
	"github.com/atomicstack/piradio/internal/logging/events"
	"github.com/atomicstack/piradio/internal/system"
)

const (
	DefaultHold = 5 * time.Second
	DefaultPoll = 100 * time.Millisecond
	DefaultUnit = "pi-radio"
)

type Options struct {
	// Buttons must all read low at once.
	Buttons []int
	Hold    time.Duration
	Poll    time.Duration
	Unit    string
	Now     func() time.Time
}

// Watchdog polls the buttons and fires once per continuous hold.
type Watchdog struct {
	gpio   hw.GPIO
	runner system.Runner
	opts   Options

	mu        sync.Mutex
	holding   bool
	heldSince time.Time
	fired     bool
}

func New(gpio hw.GPIO, runner system.Runner, opts Options) *Watchdog {
	if opts.Hold <= 0 {
		opts.Hold = DefaultHold
	}
	if opts.Poll <= 0 {
		opts.Poll = DefaultPoll
	}
	if opts.Unit == "" {
		opts.Unit = DefaultUnit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Watchdog{gpio: gpio, runner: runner, opts: opts}
}

// Start configures the buttons as pulled-up inputs. The pins are only read,
// never registered for edges, so the radio process can own them as well.
func (w *Watchdog) Start() error {
	if len(w.opts.Buttons) == 0 {
		return fmt.Errorf("recovery: no buttons configured")
	}
	for _, pin := range w.opts.Buttons {
		if err := w.gpio.SetMode(pin, hw.Input, hw.PullUp); err != nil {
			return fmt.Errorf("recovery: pin %d: %w", pin, err)
		}
	}
	return nil
}

// Check samples the buttons once and restarts the unit when they have been
// held for the hold time. It reports whether the restart was issued.
func (w *Watchdog) Check(ctx context.Context) (bool, error) {
	held := true
	for _, pin := range w.opts.Buttons {
		level, err := w.gpio.Read(pin)
		if err != nil {
			return false, fmt.Errorf("recovery: read pin %d: %w", pin, err)
		}
		if level != hw.Low {
			held = false
			break
		}
	}

	now := w.opts.Now()
	w.mu.Lock()
	if !held {
		w.holding = false
		w.fired = false
		w.mu.Unlock()
		return false, nil
	}
	if !w.holding {
		w.holding = true
		w.heldSince = now
	}
	elapsed := now.Sub(w.heldSince)
	fire := !w.fired && elapsed >= w.opts.Hold
	if fire {
		w.fired = true
	}
	w.mu.Unlock()

	events.Recovery.Held(elapsed.String())
	if !fire {
		return false, nil
	}
	events.Recovery.Triggered(w.opts.Unit)
	if _, err := w.runner.Run(ctx, "sudo", "systemctl", "restart", w.opts.Unit); err != nil {
		return true, fmt.Errorf("recovery: restart %s: %w", w.opts.Unit, err)
	}
	return true, nil
}

// Run polls until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	poller := backend.StartPoller(ctx, w.opts.Poll, func(ctx context.Context) {
		if _, err := w.Check(ctx); err != nil {
			logging.Error(err)
		}
	})
	poller.Wait()
	return nil
}
