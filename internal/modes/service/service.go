// Package service is a mode backed by a systemd unit, used for receivers
// that run as their own daemon (shairport-sync, raspotify).
package service

import (
	"context"
	"fmt"

	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/menu"
	"github.com/atomicstack/piradio/internal/modes/session"
	"github.com/atomicstack/piradio/internal/system"
)

type Config struct {
	Name       string
	Unit       string
	DeviceName string
	// Artist is shown as now-playing metadata while the mode is active;
	// these receivers do not report track metadata.
	Artist string
}

type Mode struct {
	session.Session

	cfg    Config
	runner system.Runner
}

func New(cfg Config, runner system.Runner) *Mode {
	if cfg.DeviceName == "" {
		cfg.DeviceName = "PiRadio"
	}
	if cfg.Artist == "" {
		cfg.Artist = cfg.DeviceName
	}
	return &Mode{cfg: cfg, runner: runner}
}

func (m *Mode) Name() string { return m.cfg.Name }

func (m *Mode) Menu() []menu.Entry {
	return []menu.Entry{
		menu.Item("Show Device Name", func() {
			m.Show(display.KeyMenuInfo, m.cfg.DeviceName)
		}),
	}
}

// Prepare stops the unit so the receiver is not advertised until the mode is
// selected.
func (m *Mode) Prepare(ctx context.Context) error {
	return m.systemctl(ctx, "stop")
}

func (m *Mode) Enter(ctx context.Context) error {
	m.Begin(ctx)
	m.Metadata(ctx, display.Metadata{Artist: m.cfg.Artist})
	if err := m.systemctl(ctx, "start"); err != nil {
		m.ShowIn(ctx, display.KeyMenuInfo, "Error!")
		return err
	}
	return nil
}

func (m *Mode) Exit(ctx context.Context) error {
	return m.systemctl(ctx, "stop")
}

func (m *Mode) systemctl(ctx context.Context, verb string) error {
	if _, err := m.runner.Run(ctx, "sudo", "systemctl", verb, m.cfg.Unit); err != nil {
		return fmt.Errorf("%s %s: %w", verb, m.cfg.Unit, err)
	}
	return nil
}
