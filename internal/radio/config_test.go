package radio

import (
	"testing"
	"time"

	"github.com/atomicstack/piradio/internal/config"
	"github.com/atomicstack/piradio/internal/system"
)

func TestBuildModesFromDefaults(t *testing.T) {
	cfg := config.Default()
	modes, err := BuildModes(cfg.Modes, system.NewDryRun(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var names []string
	for _, m := range modes {
		names = append(names, m.Name())
	}
	want := []string{"Internet Radio", "Airplay", "Spotify Connect", "Settings"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestBuildModesRejectsUnknownType(t *testing.T) {
	_, err := BuildModes([]config.ModeConfig{{Type: "tape", Name: "Tape"}}, system.NewDryRun(), nil)
	if err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Hardware.MuteLED = 26
	opts := OptionsFromConfig(cfg, system.NewDryRun())
	if opts.Selector.Button != 13 || opts.Volume.Button != 21 || opts.MuteLED != 26 {
		t.Fatalf("unexpected pins %+v %+v %d", opts.Selector, opts.Volume, opts.MuteLED)
	}
	if opts.Debounce != 400*time.Millisecond || opts.Display.Timeout != 5*time.Second {
		t.Fatalf("unexpected timings %s %s", opts.Debounce, opts.Display.Timeout)
	}
	if opts.Level.Initial != 50 || opts.Level.Step != 5 {
		t.Fatalf("unexpected volume options %+v", opts.Level)
	}
}
