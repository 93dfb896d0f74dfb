package rotary

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/piradio/internal/hw"
	"github.com/atomicstack/piradio/internal/logging/events"
)

const eventBuffer = 16

// Pins names the three inputs of one knob.
type Pins struct {
	A      int
	B      int
	Button int
}

// Rotation is one detent. Dir is +1 clockwise, -1 counter-clockwise.
type Rotation struct {
	Dir  int
	Time time.Time
}

// Press is one debounced button edge. The buttons are active-low.
type Press struct {
	Pressed bool
	Time    time.Time
}

// Input owns the pin registrations for one knob and publishes its events.
type Input struct {
	name     string
	gpio     hw.GPIO
	pins     Pins
	debounce time.Duration

	mu        sync.Mutex
	decoder   *Decoder
	debouncer *Debouncer
	cancels   []hw.Cancel
	started   bool
	closed    bool

	rotations chan Rotation
	presses   chan Press
}

// NewInput prepares a knob. Nothing touches the pins until Start.
func NewInput(name string, gpio hw.GPIO, pins Pins, debounce time.Duration) *Input {
	return &Input{
		name:      name,
		gpio:      gpio,
		pins:      pins,
		debounce:  debounce,
		decoder:   NewDecoder(pins.A, pins.B),
		debouncer: NewDebouncer(debounce),
		rotations: make(chan Rotation, eventBuffer),
		presses:   make(chan Press, eventBuffer),
	}
}

// Name identifies the knob in traces.
func (in *Input) Name() string { return in.name }

// Rotations delivers detents. The channel is closed by Close.
func (in *Input) Rotations() <-chan Rotation { return in.rotations }

// Presses delivers debounced button edges. The channel is closed by Close.
func (in *Input) Presses() <-chan Press { return in.presses }

// Start configures the pins as pulled-up inputs, seeds the decoder from the
// measured levels and registers edge callbacks. On failure every registration
// made so far is released.
func (in *Input) Start() error {
	in.mu.Lock()
	if in.started || in.closed {
		in.mu.Unlock()
		return fmt.Errorf("rotary %s: already started", in.name)
	}
	in.started = true
	in.mu.Unlock()

	for _, pin := range []int{in.pins.A, in.pins.B, in.pins.Button} {
		if err := in.gpio.SetMode(pin, hw.Input, hw.PullUp); err != nil {
			return fmt.Errorf("rotary %s: %w", in.name, err)
		}
	}
	a, errA := in.gpio.Read(in.pins.A)
	b, errB := in.gpio.Read(in.pins.B)
	if err := errors.Join(errA, errB); err != nil {
		return fmt.Errorf("rotary %s: read initial levels: %w", in.name, err)
	}
	in.mu.Lock()
	in.decoder.Seed(a, b)
	in.mu.Unlock()

	regs := []struct {
		pin     int
		handler hw.EdgeHandler
	}{
		{in.pins.A, in.onQuadrature},
		{in.pins.B, in.onQuadrature},
		{in.pins.Button, in.onButton},
	}
	for _, reg := range regs {
		cancel, err := in.gpio.OnEdge(reg.pin, hw.BothEdges, reg.handler)
		if err != nil {
			in.cancelAll()
			return fmt.Errorf("rotary %s: %w", in.name, err)
		}
		in.mu.Lock()
		if in.closed {
			in.mu.Unlock()
			return errors.Join(fmt.Errorf("rotary %s: closed during start", in.name), cancel())
		}
		in.cancels = append(in.cancels, cancel)
		in.mu.Unlock()
	}
	return nil
}

func (in *Input) onQuadrature(e hw.Edge) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}
	dir, noise := in.decoder.Feed(e)
	if noise {
		events.Input.Noise(in.name, e.Pin)
		return
	}
	if dir == 0 {
		return
	}
	events.Input.Rotate(in.name, dir)
	select {
	case in.rotations <- Rotation{Dir: dir, Time: e.Time}:
	default:
		events.Input.Dropped(in.name, "rotation")
	}
}

func (in *Input) onButton(e hw.Edge) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return
	}
	if !in.debouncer.Accept(e.Time) {
		events.Input.Bounce(in.name, e.Pin)
		return
	}
	pressed := e.Level == hw.Low
	events.Input.Press(in.name, pressed)
	select {
	case in.presses <- Press{Pressed: pressed, Time: e.Time}:
	default:
		events.Input.Dropped(in.name, "press")
	}
}

func (in *Input) cancelAll() error {
	in.mu.Lock()
	cancels := in.cancels
	in.cancels = nil
	in.mu.Unlock()

	var errs []error
	for _, cancel := range cancels {
		if err := cancel(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases every registration and closes both channels. It is safe to
// call more than once, including while Start is still registering.
func (in *Input) Close() error {
	in.mu.Lock()
	if !in.closed {
		in.closed = true
		close(in.rotations)
		close(in.presses)
	}
	in.mu.Unlock()
	return in.cancelAll()
}
