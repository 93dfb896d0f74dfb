package mode

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/logging"
	"github.com/atomicstack/piradio/internal/logging/events"
)

// DefaultExitTimeout bounds how long Exit may take before the switch
// proceeds.
const DefaultExitTimeout = 5 * time.Second

type epochKey struct{}

// WithEpoch scopes ctx to a session epoch.
func WithEpoch(ctx context.Context, epoch uint64) context.Context {
	return context.WithValue(ctx, epochKey{}, epoch)
}

// EpochOf returns the session epoch carried by ctx.
func EpochOf(ctx context.Context) (uint64, bool) {
	if ctx == nil {
		return 0, false
	}
	epoch, ok := ctx.Value(epochKey{}).(uint64)
	return epoch, ok
}

// Orchestrator owns the active-mode slot.
type Orchestrator struct {
	sink        display.Sink
	exitTimeout time.Duration

	transition sync.Mutex
	active     Mode
	cancel     context.CancelFunc

	// gate orders epoch changes against Publish so a stale worker cannot
	// slip an update in after the switch started.
	gate  sync.Mutex
	epoch uint64
}

// NewOrchestrator returns an orchestrator with no active mode.
func NewOrchestrator(sink display.Sink) *Orchestrator {
	return &Orchestrator{sink: sink, exitTimeout: DefaultExitTimeout}
}

// SetExitTimeout overrides DefaultExitTimeout.
func (o *Orchestrator) SetExitTimeout(d time.Duration) {
	if d > 0 {
		o.exitTimeout = d
	}
}

// Switch exits the active mode, if any, and enters next. Exit failures are
// logged and do not stop next from being entered. An Enter failure is logged
// and leaves next in the slot.
//
// The metadata clear is queued before Enter so that anything Enter shows is
// rendered after it.
func (o *Orchestrator) Switch(next Mode) error {
	o.transition.Lock()
	defer o.transition.Unlock()

	prevName := ""
	if o.active != nil {
		prevName = o.active.Name()
	}

	o.gate.Lock()
	o.epoch++
	epoch := o.epoch
	o.gate.Unlock()
	events.Mode.Switch(prevName, next.Name(), epoch)

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	var errs []error
	if o.active != nil {
		if err := o.exit(context.Background(), o.active); err != nil {
			errs = append(errs, err)
		}
	}

	o.active = next
	o.sink.Submit(display.ClearMetadata())
	ctx, cancel := context.WithCancel(WithEpoch(context.Background(), epoch))
	o.cancel = cancel
	if err := next.Enter(ctx); err != nil {
		terr := &TransitionError{Mode: next.Name(), Phase: PhaseEnter, Err: err}
		o.report(terr)
		errs = append(errs, terr)
	}

	o.sink.Submit(display.Text(display.KeyMode, next.Name()))
	return errors.Join(errs...)
}

func (o *Orchestrator) exit(parent context.Context, m Mode) error {
	ctx, cancel := context.WithTimeout(parent, o.exitTimeout)
	defer cancel()
	if err := m.Exit(ctx); err != nil {
		terr := &TransitionError{Mode: m.Name(), Phase: PhaseExit, Err: err}
		o.report(terr)
		return terr
	}
	return nil
}

func (o *Orchestrator) report(err error) {
	events.Mode.Error(err)
	logging.Error(err)
}

// Active returns the mode in the slot, or nil.
func (o *Orchestrator) Active() Mode {
	o.transition.Lock()
	defer o.transition.Unlock()
	return o.active
}

// Epoch returns the current session epoch.
func (o *Orchestrator) Epoch() uint64 {
	o.gate.Lock()
	defer o.gate.Unlock()
	return o.epoch
}

// Publish forwards u unless ctx belongs to a session that has since been
// switched away from. Contexts without an epoch always pass. It reports
// whether u was forwarded.
func (o *Orchestrator) Publish(ctx context.Context, u display.Update) bool {
	o.gate.Lock()
	defer o.gate.Unlock()
	if epoch, ok := EpochOf(ctx); ok && epoch != o.epoch {
		events.Mode.StaleUpdate(string(u.Key), epoch, o.epoch)
		return false
	}
	o.sink.Submit(u)
	return true
}

// Shutdown exits the active mode. It is a no-op when no mode was ever
// entered.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.transition.Lock()
	defer o.transition.Unlock()

	o.gate.Lock()
	o.epoch++
	o.gate.Unlock()

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.active == nil {
		return nil
	}
	prev := o.active
	o.active = nil
	events.Mode.Switch(prev.Name(), "", o.Epoch())
	return o.exit(ctx, prev)
}
