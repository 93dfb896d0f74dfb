package radio

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/hw"
	"github.com/atomicstack/piradio/internal/hw/virtual"
	"github.com/atomicstack/piradio/internal/mode"
	"github.com/atomicstack/piradio/internal/modes/service"
	"github.com/atomicstack/piradio/internal/modes/settings"
	"github.com/atomicstack/piradio/internal/rotary"
	"github.com/atomicstack/piradio/internal/system"
	"github.com/atomicstack/piradio/internal/volume"
)

var (
	selectorPins = rotary.Pins{A: 5, B: 6, Button: 13}
	volumePins   = rotary.Pins{A: 19, B: 20, Button: 21}
)

type rig struct {
	radio  *Radio
	gpio   *virtual.GPIO
	disp   *virtual.Display
	clock  *virtual.Clock
	runner *system.DryRun
	cancel context.CancelFunc
	done   chan error
}

func startRig(t *testing.T, muteLED int, startup string) *rig {
	t.Helper()
	clock := virtual.NewClock(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
	g := virtual.NewGPIO(virtual.WithClock(clock.Now))
	d := virtual.NewDisplay()
	runner := system.NewDryRun()

	modes := []mode.Mode{
		settings.New("", runner),
		service.New(service.Config{Name: "Airplay", Unit: "shairport-sync.service"}, runner),
	}
	r, err := New(g, d, Options{
		Selector:    selectorPins,
		Volume:      volumePins,
		MuteLED:     muteLED,
		Debounce:    400 * time.Millisecond,
		Display:     display.Options{Poll: 5 * time.Millisecond, MinInterval: time.Millisecond, Now: time.Now},
		Output:      volume.Pactl{Runner: runner},
		Level:       volume.Options{Initial: 50, Step: 5},
		Modes:       modes,
		StartupMode: startup,
		Now:         clock.Now,
		ClockPoll:   5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new radio: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	rg := &rig{radio: r, gpio: g, disp: d, clock: clock, runner: runner, cancel: cancel, done: make(chan error, 1)}
	go func() { rg.done <- r.Run(ctx) }()
	t.Cleanup(func() { rg.stop(t) })
	rg.waitLine(t, 0, "09:30")
	return rg
}

func (rg *rig) stop(t *testing.T) {
	t.Helper()
	if rg.cancel == nil {
		return
	}
	rg.cancel()
	rg.cancel = nil
	select {
	case err := <-rg.done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("radio did not stop")
	}
}

func (rg *rig) waitLine(t *testing.T, row int, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		lines := rg.disp.Lines()
		if strings.Contains(lines[row], want) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected row %d to contain %q, got %q", row, want, lines[row])
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (rg *rig) press(pin int) {
	rg.clock.Advance(time.Second)
	rg.gpio.Press(pin)
	rg.gpio.Release(pin)
}

func (rg *rig) hasCall(line string) bool {
	for _, c := range rg.runner.Calls() {
		if c == line {
			return true
		}
	}
	return false
}

func TestRadioNavigatesIntoMode(t *testing.T) {
	rg := startRig(t, 0, "")
	rg.waitLine(t, 1, "Settings")

	rg.gpio.Turn(selectorPins.A, selectorPins.B, 1)
	rg.waitLine(t, 1, "Airplay")

	rg.press(selectorPins.Button)
	rg.waitLine(t, 1, "Show Device Name")
	rg.waitLine(t, 0, "Airplay")
	if active := rg.radio.Orchestrator().Active(); active == nil || active.Name() != "Airplay" {
		t.Fatalf("expected Airplay active, got %v", active)
	}
	if !rg.hasCall("sudo systemctl start shairport-sync.service") {
		t.Fatalf("expected airplay unit started, got %v", rg.runner.Calls())
	}

	rg.press(selectorPins.Button)
	rg.waitLine(t, 1, "PiRadio")

	rg.stop(t)
	if !rg.hasCall("sudo systemctl stop shairport-sync.service") {
		t.Fatalf("expected unit stopped on shutdown")
	}
	if rg.gpio.Registrations() != 0 {
		t.Fatalf("expected every pin released, got %d", rg.gpio.Registrations())
	}
	if rg.disp.Backlight() {
		t.Fatalf("expected backlight off after shutdown")
	}
	for i, line := range rg.disp.Lines() {
		if strings.TrimSpace(line) != "" {
			t.Fatalf("expected blank row %d after shutdown, got %q", i, line)
		}
	}
}

func TestRadioVolumeKnob(t *testing.T) {
	rg := startRig(t, 26, "")
	rg.waitLine(t, 3, "|█████-----|")
	if rg.gpio.Level(26) != hw.Low {
		t.Fatalf("expected mute LED off at start")
	}

	rg.gpio.Turn(volumePins.A, volumePins.B, 1)
	rg.gpio.Turn(volumePins.A, volumePins.B, 1)
	rg.waitLine(t, 3, "|██████----|")
	if rg.radio.Volume().Level() != 60 {
		t.Fatalf("expected level 60, got %d", rg.radio.Volume().Level())
	}
	if !rg.hasCall("pactl set-sink-volume 0 60%") {
		t.Fatalf("expected pactl call, got %v", rg.runner.Calls())
	}

	rg.press(volumePins.Button)
	rg.waitLine(t, 3, "|----------|")
	if rg.gpio.Level(26) != hw.High {
		t.Fatalf("expected mute LED lit")
	}

	rg.gpio.Turn(volumePins.A, volumePins.B, -1)
	rg.waitLine(t, 3, "|██████----|")
	if rg.radio.Volume().Muted() {
		t.Fatalf("expected rotation to unmute")
	}
}

func TestRadioStartupMode(t *testing.T) {
	rg := startRig(t, 0, "air")
	rg.waitLine(t, 0, "Airplay")
	if !rg.hasCall("sudo systemctl start shairport-sync.service") {
		t.Fatalf("expected startup mode entered, got %v", rg.runner.Calls())
	}
	// The menu stays at the root.
	rg.waitLine(t, 1, "Settings")
}

func TestRadioPreparesModes(t *testing.T) {
	rg := startRig(t, 0, "")
	calls := rg.runner.Calls()
	if len(calls) == 0 || calls[0] != "sudo systemctl stop shairport-sync.service" {
		t.Fatalf("expected service stopped before anything else, got %v", calls)
	}
}

func TestNewRejectsDuplicateModes(t *testing.T) {
	runner := system.NewDryRun()
	_, err := New(virtual.NewGPIO(), virtual.NewDisplay(), Options{
		Output: volume.Pactl{Runner: runner},
		Modes:  []mode.Mode{settings.New("", runner), settings.New("", runner)},
	})
	if err == nil {
		t.Fatalf("expected duplicate mode error")
	}
}

func TestMatchMode(t *testing.T) {
	names := []string{"Internet Radio", "Airplay", "Spotify Connect", "Settings"}
	cases := map[string]int{
		"airplay": 1,
		"Set":     3,
		"connect": 2,
		"intrad":  0,
		"":        -1,
		"zzz":     -1,
	}
	for query, want := range cases {
		if got := matchMode(names, query); got != want {
			t.Fatalf("query %q: expected %d, got %d", query, want, got)
		}
	}
}
