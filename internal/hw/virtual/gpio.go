// Package virtual provides in-memory GPIO and display providers used by the
// simulator and by tests. Edges are injected with Set and delivered
// synchronously to registered handlers, standing in for the hardware callback
// context.
package virtual

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/atomicstack/piradio/internal/hw"
)

var errClosed = errors.New("gpio closed")

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type registration struct {
	edge    hw.EdgeMode
	handler hw.EdgeHandler
}

type pinState struct {
	mode     hw.PinMode
	pull     hw.Pull
	level    hw.Level
	handlers map[int]registration
}

// GPIO is a virtual pin bank.
type GPIO struct {
	now func() time.Time

	mu     sync.Mutex
	pins   map[int]*pinState
	nextID int
	closed bool
}

// Option configures a virtual GPIO.
type Option func(*GPIO)

// WithClock sets the time source stamped on injected edges.
func WithClock(now func() time.Time) Option {
	return func(g *GPIO) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGPIO returns an empty virtual pin bank.
func NewGPIO(opts ...Option) *GPIO {
	g := &GPIO{now: time.Now, pins: make(map[int]*pinState)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GPIO) pinLocked(pin int) *pinState {
	p, ok := g.pins[pin]
	if !ok {
		p = &pinState{level: hw.High, pull: hw.PullNone, handlers: make(map[int]registration)}
		g.pins[pin] = p
	}
	return p
}

func (g *GPIO) SetMode(pin int, mode hw.PinMode, pull hw.Pull) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return fmt.Errorf("gpio: pin %d: %w", pin, errClosed)
	}
	p := g.pinLocked(pin)
	p.mode = mode
	p.pull = pull
	switch pull {
	case hw.PullUp:
		p.level = hw.High
	case hw.PullDown:
		p.level = hw.Low
	}
	return nil
}

func (g *GPIO) Read(pin int) (hw.Level, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return hw.Low, fmt.Errorf("gpio: pin %d: %w", pin, errClosed)
	}
	return g.pinLocked(pin).level, nil
}

func (g *GPIO) Write(pin int, level hw.Level) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return fmt.Errorf("gpio: pin %d: %w", pin, errClosed)
	}
	p := g.pinLocked(pin)
	if p.mode != hw.Output {
		return fmt.Errorf("gpio: pin %d: write to input pin", pin)
	}
	p.level = level
	return nil
}

func (g *GPIO) OnEdge(pin int, edge hw.EdgeMode, handler hw.EdgeHandler) (hw.Cancel, error) {
	if handler == nil {
		return nil, fmt.Errorf("gpio: pin %d: nil handler", pin)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, fmt.Errorf("gpio: pin %d: %w", pin, errClosed)
	}
	p := g.pinLocked(pin)
	g.nextID++
	id := g.nextID
	p.handlers[id] = registration{edge: edge, handler: handler}
	var once sync.Once
	return func() error {
		once.Do(func() {
			g.mu.Lock()
			delete(p.handlers, id)
			g.mu.Unlock()
		})
		return nil
	}, nil
}

func (g *GPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.pins {
		p.handlers = make(map[int]registration)
	}
	g.closed = true
	return nil
}

// Registrations reports the number of live edge registrations.
func (g *GPIO) Registrations() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, p := range g.pins {
		n += len(p.handlers)
	}
	return n
}

// Level reports a pin level without the closed check.
func (g *GPIO) Level(pin int) hw.Level {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pinLocked(pin).level
}

// Set drives an input pin. A change of level fires the matching handlers
// synchronously, in registration order, outside the bank lock.
func (g *GPIO) Set(pin int, level hw.Level) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	p := g.pinLocked(pin)
	if p.level == level {
		g.mu.Unlock()
		return
	}
	p.level = level
	ids := make([]int, 0, len(p.handlers))
	for id := range p.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var fire []hw.EdgeHandler
	for _, id := range ids {
		reg := p.handlers[id]
		if matches(reg.edge, level) {
			fire = append(fire, reg.handler)
		}
	}
	evt := hw.Edge{Pin: pin, Level: level, Time: g.now()}
	g.mu.Unlock()

	for _, h := range fire {
		h(evt)
	}
}

func matches(mode hw.EdgeMode, level hw.Level) bool {
	switch mode {
	case hw.BothEdges:
		return true
	case hw.RisingEdge:
		return level == hw.High
	case hw.FallingEdge:
		return level == hw.Low
	}
	return false
}

// Turn emits one full quadrature detent on the a/b pair. Positive dir is
// clockwise.
func (g *GPIO) Turn(a, b, dir int) {
	first, second := b, a
	if dir < 0 {
		first, second = a, b
	}
	g.Set(first, hw.Low)
	g.Set(second, hw.Low)
	g.Set(first, hw.High)
	g.Set(second, hw.High)
}

// Press pulls an active-low button to ground.
func (g *GPIO) Press(pin int) {
	g.Set(pin, hw.Low)
}

// Release lets an active-low button return to its pull-up level.
func (g *GPIO) Release(pin int) {
	g.Set(pin, hw.High)
}
