package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hardware.Volume != (Knob{A: 19, B: 20, Button: 21}) {
		t.Fatalf("unexpected volume knob %+v", cfg.Hardware.Volume)
	}
	if cfg.Hardware.Selector != (Knob{A: 5, B: 6, Button: 13}) {
		t.Fatalf("unexpected selector knob %+v", cfg.Hardware.Selector)
	}
	if cfg.Hardware.Debounce != 400*time.Millisecond {
		t.Fatalf("expected 400ms debounce, got %s", cfg.Hardware.Debounce)
	}
	if cfg.Display.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.Display.Timeout)
	}
	if cfg.Volume.Initial != 50 || cfg.Volume.Step != 5 {
		t.Fatalf("unexpected volume defaults %+v", cfg.Volume)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "piradio.yaml")
	body := `
hardware:
  debounce: 250ms
  mute_led: 26
display:
  timeout: 8s
modes:
  - type: settings
    name: Settings
startup_mode: settings
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("expected path %q, got %q", path, cfg.Path)
	}
	if cfg.Hardware.Debounce != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.Hardware.Debounce)
	}
	if cfg.Hardware.MuteLED != 26 {
		t.Fatalf("expected mute LED 26, got %d", cfg.Hardware.MuteLED)
	}
	if cfg.Hardware.Volume.A != 19 {
		t.Fatalf("expected untouched pins to keep defaults, got %+v", cfg.Hardware.Volume)
	}
	if cfg.Display.Timeout != 8*time.Second {
		t.Fatalf("expected 8s timeout, got %s", cfg.Display.Timeout)
	}
	if len(cfg.Modes) != 1 || cfg.Modes[0].Name != "Settings" {
		t.Fatalf("expected modes replaced, got %+v", cfg.Modes)
	}
	if cfg.StartupMode != "settings" {
		t.Fatalf("expected startup mode settings, got %q", cfg.StartupMode)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	env := []string{
		"PIRADIO_LOG_FILE=/tmp/radio.log",
		"PIRADIO_TRACE=1",
		"PIRADIO_DEBOUNCE=10ms",
		"PIRADIO_DISPLAY_TIMEOUT=2s",
		"PIRADIO_STARTUP_MODE=Airplay",
		"PIRADIO_DRY_RUN=true",
		"PIRADIO_INITIAL_VOLUME=30",
		"MALFORMED",
	}
	cfg, err := Load("", env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.FilePath != "/tmp/radio.log" || !cfg.Logging.Trace {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if cfg.Hardware.Debounce != 10*time.Millisecond || cfg.Display.Timeout != 2*time.Second {
		t.Fatalf("unexpected timings %s %s", cfg.Hardware.Debounce, cfg.Display.Timeout)
	}
	if cfg.StartupMode != "Airplay" || !cfg.DryRun || cfg.Volume.Initial != 30 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.Flags["dryRun"] != "true" {
		t.Fatalf("expected dryRun flag recorded, got %q", cfg.Flags["dryRun"])
	}
}

func TestLoadIgnoresBadEnvValues(t *testing.T) {
	cfg, err := Load("", []string{"PIRADIO_DEBOUNCE=soon", "PIRADIO_TRACE=maybe", "PIRADIO_INITIAL_VOLUME=loud"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hardware.Debounce != 400*time.Millisecond || cfg.Logging.Trace || cfg.Volume.Initial != 50 {
		t.Fatalf("expected defaults kept, got %+v", cfg)
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("volume:\n  step: 10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load("", []string{"PIRADIO_CONFIG=" + path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Volume.Step != 10 {
		t.Fatalf("expected step 10, got %d", cfg.Volume.Step)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("hardware: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateRejectsPinClash(t *testing.T) {
	cfg := Default()
	cfg.Hardware.Selector.Button = cfg.Hardware.Volume.Button
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "already used") {
		t.Fatalf("expected pin clash error, got %v", err)
	}
}

func TestValidateRejectsBadModes(t *testing.T) {
	cfg := Default()
	cfg.Modes = []ModeConfig{
		{Type: "cassette", Name: "Tape"},
		{Type: ModeService, Name: "Airplay"},
		{Type: ModeNetRadio, Name: "Radio"},
		{Type: ModeSettings, Name: "Radio"},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"unknown type", "needs a unit", "needs stations", "duplicate name"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestValidateRejectsTimings(t *testing.T) {
	cfg := Default()
	cfg.Display.Timeout = 0
	cfg.Volume.Step = 0
	cfg.Volume.Initial = 120
	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"timeout", "step", "initial volume"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}
