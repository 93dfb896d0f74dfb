package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/hw/virtual"
	"github.com/atomicstack/piradio/internal/mode"
	"github.com/atomicstack/piradio/internal/modes/service"
	"github.com/atomicstack/piradio/internal/modes/settings"
	"github.com/atomicstack/piradio/internal/radio"
	"github.com/atomicstack/piradio/internal/rotary"
	"github.com/atomicstack/piradio/internal/system"
	"github.com/atomicstack/piradio/internal/volume"
)

var (
	selector = rotary.Pins{A: 5, B: 6, Button: 13}
	knob     = rotary.Pins{A: 19, B: 20, Button: 21}
)

func runRadio(t *testing.T, timeout time.Duration) (*virtual.GPIO, *virtual.Display, *virtual.Clock) {
	t.Helper()
	clock := virtual.NewClock(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
	g := virtual.NewGPIO(virtual.WithClock(clock.Now))
	d := virtual.NewDisplay()
	runner := system.NewDryRun()
	r, err := radio.New(g, d, radio.Options{
		Selector: selector,
		Volume:   knob,
		Debounce: 400 * time.Millisecond,
		Display:  display.Options{Timeout: timeout, Poll: 5 * time.Millisecond, MinInterval: time.Millisecond, Now: time.Now},
		Output:   volume.Pactl{Runner: runner},
		Level:    volume.Options{Initial: 50, Step: 5},
		Modes: []mode.Mode{
			settings.New("", runner),
			service.New(service.Config{Name: "Airplay", Unit: "shairport-sync.service"}, runner),
		},
		Now:       clock.Now,
		ClockPoll: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new radio: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("radio did not stop")
		}
	})
	return g, d, clock
}

func rowsContain(d *virtual.Display, want ...string) func() bool {
	return func() bool {
		lines := d.Lines()
		for i, w := range want {
			if w != "" && !strings.Contains(lines[i], w) {
				return false
			}
		}
		return true
	}
}

func enterAirplay(g *virtual.GPIO, clock *virtual.Clock) {
	g.Turn(selector.A, selector.B, 1)
	clock.Advance(time.Second)
	g.Press(selector.Button)
	g.Release(selector.Button)
}

func TestStartupFrame(t *testing.T) {
	_, d, _ := runRadio(t, time.Minute)
	WaitFor(t, 3*time.Second, "startup frame", rowsContain(d, "09:30", "Settings", "", "█"))
	AssertGolden(t, "lcd/startup.txt", Frame(d.Lines()))
}

func TestModeControlFrame(t *testing.T) {
	g, d, clock := runRadio(t, time.Minute)
	WaitFor(t, 3*time.Second, "startup", rowsContain(d, "09:30", "Settings"))
	enterAirplay(g, clock)
	WaitFor(t, 3*time.Second, "airplay menu", rowsContain(d, "Airplay", "Show Device Name"))
	AssertGolden(t, "lcd/airplay_control.txt", Frame(d.Lines()))
}

func TestNowPlayingFrameAfterIdle(t *testing.T) {
	g, d, clock := runRadio(t, 150*time.Millisecond)
	WaitFor(t, 3*time.Second, "startup", rowsContain(d, "09:30"))
	enterAirplay(g, clock)
	playing := rowsContain(d, "Airplay", "", "PiRadio")
	WaitFor(t, 3*time.Second, "now playing", func() bool {
		return playing() && strings.TrimSpace(d.Lines()[3]) == ""
	})
	AssertGolden(t, "lcd/airplay_now_playing.txt", Frame(d.Lines()))
}
