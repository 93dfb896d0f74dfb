// Package periphio implements the hardware capabilities on a Raspberry Pi
// using periph.io.
package periphio

import (
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/piradio/internal/hw"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgePoll bounds how long a cancelled registration can keep its goroutine.
const edgePoll = 100 * time.Millisecond

var (
	initMu sync.Mutex
	inited bool
)

// Init loads the periph host drivers. A failed attempt is retried on the
// next call.
func Init() error {
	initMu.Lock()
	defer initMu.Unlock()
	if inited {
		return nil
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("%w: periph host init: %v", hw.ErrHardwareUnavailable, err)
	}
	inited = true
	return nil
}

type watch struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// GPIO exposes BCM-numbered header pins.
type GPIO struct {
	mu      sync.Mutex
	pulls   map[int]gpio.Pull
	watches map[*watch]struct{}
	used    map[int]gpio.PinIO
}

// OpenGPIO initialises the host and returns the pin bank.
func OpenGPIO() (*GPIO, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return &GPIO{
		pulls:   make(map[int]gpio.Pull),
		watches: make(map[*watch]struct{}),
		used:    make(map[int]gpio.PinIO),
	}, nil
}

func (g *GPIO) pin(n int) (gpio.PinIO, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.used[n]; ok {
		return p, nil
	}
	p := byNumber(n)
	if p == nil {
		return nil, fmt.Errorf("%w: gpio: pin %d not found", hw.ErrHardwareUnavailable, n)
	}
	g.used[n] = p
	return p, nil
}

func byNumber(n int) gpio.PinIO {
	return gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
}

func toPull(p hw.Pull) gpio.Pull {
	switch p {
	case hw.PullUp:
		return gpio.PullUp
	case hw.PullDown:
		return gpio.PullDown
	}
	return gpio.Float
}

func toEdge(e hw.EdgeMode) gpio.Edge {
	switch e {
	case hw.RisingEdge:
		return gpio.RisingEdge
	case hw.FallingEdge:
		return gpio.FallingEdge
	case hw.BothEdges:
		return gpio.BothEdges
	}
	return gpio.NoEdge
}

func toLevel(l gpio.Level) hw.Level {
	if l == gpio.High {
		return hw.High
	}
	return hw.Low
}

func (g *GPIO) SetMode(n int, mode hw.PinMode, pull hw.Pull) error {
	p, err := g.pin(n)
	if err != nil {
		return err
	}
	if mode == hw.Output {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("gpio: pin %d: set output: %w", n, err)
		}
		return nil
	}
	gp := toPull(pull)
	if err := p.In(gp, gpio.NoEdge); err != nil {
		return fmt.Errorf("gpio: pin %d: set input: %w", n, err)
	}
	g.mu.Lock()
	g.pulls[n] = gp
	g.mu.Unlock()
	return nil
}

func (g *GPIO) Read(n int) (hw.Level, error) {
	p, err := g.pin(n)
	if err != nil {
		return hw.Low, err
	}
	return toLevel(p.Read()), nil
}

func (g *GPIO) Write(n int, level hw.Level) error {
	p, err := g.pin(n)
	if err != nil {
		return err
	}
	lvl := gpio.Low
	if level == hw.High {
		lvl = gpio.High
	}
	if err := p.Out(lvl); err != nil {
		return fmt.Errorf("gpio: pin %d: write: %w", n, err)
	}
	return nil
}

// OnEdge enables edge detection and starts a goroutine that waits for edges
// and calls handler with the level read right after the edge.
func (g *GPIO) OnEdge(n int, edge hw.EdgeMode, handler hw.EdgeHandler) (hw.Cancel, error) {
	if handler == nil {
		return nil, fmt.Errorf("gpio: pin %d: nil handler", n)
	}
	p, err := g.pin(n)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	pull, ok := g.pulls[n]
	g.mu.Unlock()
	if !ok {
		pull = gpio.PullNoChange
	}
	if err := p.In(pull, toEdge(edge)); err != nil {
		return nil, fmt.Errorf("gpio: pin %d: enable edges: %w", n, err)
	}

	w := &watch{stop: make(chan struct{}), done: make(chan struct{})}
	g.mu.Lock()
	g.watches[w] = struct{}{}
	g.mu.Unlock()

	go func() {
		defer close(w.done)
		for {
			select {
			case <-w.stop:
				return
			default:
			}
			if !p.WaitForEdge(edgePoll) {
				continue
			}
			handler(hw.Edge{Pin: n, Level: toLevel(p.Read()), Time: time.Now()})
		}
	}()

	return func() error {
		var cerr error
		w.once.Do(func() {
			close(w.stop)
			<-w.done
			g.mu.Lock()
			delete(g.watches, w)
			g.mu.Unlock()
			if err := p.In(pull, gpio.NoEdge); err != nil {
				cerr = fmt.Errorf("gpio: pin %d: disable edges: %w", n, err)
			}
		})
		return cerr
	}, nil
}

// Close stops every edge watcher and halts the pins that were used.
func (g *GPIO) Close() error {
	g.mu.Lock()
	watches := make([]*watch, 0, len(g.watches))
	for w := range g.watches {
		watches = append(watches, w)
	}
	g.watches = make(map[*watch]struct{})
	pins := make([]gpio.PinIO, 0, len(g.used))
	for _, p := range g.used {
		pins = append(pins, p)
	}
	g.mu.Unlock()

	for _, w := range watches {
		w.once.Do(func() {
			close(w.stop)
			<-w.done
		})
	}
	var first error
	for _, p := range pins {
		if err := p.Halt(); err != nil && first == nil {
			first = fmt.Errorf("gpio: halt %s: %w", p.Name(), err)
		}
	}
	return first
}
