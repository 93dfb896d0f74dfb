package app

import (
	"testing"

	"github.com/atomicstack/piradio/internal/config"
	"github.com/atomicstack/piradio/internal/hw/virtual"
	"github.com/atomicstack/piradio/internal/system"
)

func TestRunnerHonoursDryRun(t *testing.T) {
	cfg := config.Default()
	if _, ok := Runner(cfg).(system.Exec); !ok {
		t.Fatalf("expected exec runner by default")
	}
	cfg.DryRun = true
	if _, ok := Runner(cfg).(*system.DryRun); !ok {
		t.Fatalf("expected dry-run runner")
	}
}

func TestBuildFromDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.DryRun = true
	r, err := build(cfg, virtual.NewGPIO(), virtual.NewDisplay(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{"Internet Radio", "Airplay", "Spotify Connect", "Settings"}
	got := r.Modes()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestBuildRejectsUnknownMode(t *testing.T) {
	cfg := config.Default()
	cfg.Modes = []config.ModeConfig{{Type: "tape", Name: "Tape"}}
	if _, err := build(cfg, virtual.NewGPIO(), virtual.NewDisplay(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRadioPins(t *testing.T) {
	p := radioPins(config.Knob{A: 1, B: 2, Button: 3})
	if p.A != 1 || p.B != 2 || p.Button != 3 {
		t.Fatalf("unexpected pins %+v", p)
	}
}
