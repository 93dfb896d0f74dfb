package rotary

import (
	"testing"
	"time"

	"github.com/atomicstack/piradio/internal/hw"
	"github.com/atomicstack/piradio/internal/hw/virtual"
)

var knob = Pins{A: 5, B: 6, Button: 13}

func newStartedInput(t *testing.T) (*Input, *virtual.GPIO, *virtual.Clock) {
	t.Helper()
	clock := virtual.NewClock(time.Unix(100, 0))
	g := virtual.NewGPIO(virtual.WithClock(clock.Now))
	in := NewInput("selector", g, knob, DefaultDebounce)
	if err := in.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = in.Close() })
	return in, g, clock
}

func TestInputEmitsRotations(t *testing.T) {
	in, g, _ := newStartedInput(t)
	g.Turn(knob.A, knob.B, 1)
	g.Turn(knob.A, knob.B, -1)

	for _, want := range []int{1, -1} {
		select {
		case r := <-in.Rotations():
			if r.Dir != want {
				t.Fatalf("expected dir %d, got %d", want, r.Dir)
			}
		default:
			t.Fatalf("expected rotation %d to be queued", want)
		}
	}
}

func TestInputDebouncesPresses(t *testing.T) {
	in, g, clock := newStartedInput(t)

	g.Press(knob.Button)
	clock.Advance(20 * time.Millisecond)
	g.Release(knob.Button)
	clock.Advance(500 * time.Millisecond)
	g.Press(knob.Button)

	var got []Press
	for len(got) < 2 {
		select {
		case p := <-in.Presses():
			got = append(got, p)
		default:
			t.Fatalf("expected 2 presses, got %d", len(got))
		}
	}
	if !got[0].Pressed || !got[1].Pressed {
		t.Fatalf("expected both accepted edges to be presses, got %+v", got)
	}
	select {
	case p := <-in.Presses():
		t.Fatalf("unexpected extra press %+v", p)
	default:
	}
}

func TestInputDropsWhenQueueFull(t *testing.T) {
	in, g, _ := newStartedInput(t)
	for i := 0; i < eventBuffer+5; i++ {
		g.Turn(knob.A, knob.B, 1)
	}
	if n := len(in.Rotations()); n != eventBuffer {
		t.Fatalf("expected %d queued rotations, got %d", eventBuffer, n)
	}
}

func TestInputCloseReleasesPins(t *testing.T) {
	g := virtual.NewGPIO()
	in := NewInput("volume", g, Pins{A: 19, B: 20, Button: 21}, DefaultDebounce)
	if err := in.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if n := g.Registrations(); n != 3 {
		t.Fatalf("expected 3 registrations, got %d", n)
	}
	if err := in.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := in.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if n := g.Registrations(); n != 0 {
		t.Fatalf("expected 0 registrations, got %d", n)
	}
	if _, ok := <-in.Rotations(); ok {
		t.Fatalf("expected rotations channel closed")
	}
	if _, ok := <-in.Presses(); ok {
		t.Fatalf("expected presses channel closed")
	}
}

func TestInputRisingAWithBLowIsNotADetent(t *testing.T) {
	g := virtual.NewGPIO()
	in := NewInput("selector", g, knob, DefaultDebounce)
	if err := in.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer in.Close()
	g.Set(knob.A, hw.Low)
	g.Set(knob.B, hw.Low)
	g.Set(knob.A, hw.High)
	if n := len(in.Rotations()); n != 0 {
		t.Fatalf("expected no rotation with B low, got %d", n)
	}
}

func TestInputStartTwiceFails(t *testing.T) {
	in, _, _ := newStartedInput(t)
	if err := in.Start(); err == nil {
		t.Fatalf("expected error on second start")
	}
}

// closingGPIO closes the knob from inside the registration of one pin, the
// way a shutdown racing Start would.
type closingGPIO struct {
	*virtual.GPIO
	pin int
	in  *Input
}

func (g *closingGPIO) OnEdge(pin int, edge hw.EdgeMode, handler hw.EdgeHandler) (hw.Cancel, error) {
	if pin == g.pin {
		if err := g.in.Close(); err != nil {
			return nil, err
		}
	}
	return g.GPIO.OnEdge(pin, edge, handler)
}

func TestCloseDuringStartReleasesLateRegistrations(t *testing.T) {
	for _, pin := range []int{knob.A, knob.B, knob.Button} {
		g := &closingGPIO{GPIO: virtual.NewGPIO(), pin: pin}
		in := NewInput("selector", g, knob, DefaultDebounce)
		g.in = in

		if err := in.Start(); err == nil {
			t.Fatalf("pin %d: expected start to fail once closed", pin)
		}
		if n := g.Registrations(); n != 0 {
			t.Fatalf("pin %d: expected no live registrations, got %d", pin, n)
		}
		if _, ok := <-in.Rotations(); ok {
			t.Fatalf("pin %d: expected rotations channel closed", pin)
		}
		g.Turn(knob.A, knob.B, 1)
		g.Press(knob.Button)
	}
}
