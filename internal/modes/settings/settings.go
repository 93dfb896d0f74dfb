// Package settings is the system mode: network address and power control.
package settings

import (
	"context"
	"strings"

	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/logging"
	"github.com/atomicstack/piradio/internal/menu"
	"github.com/atomicstack/piradio/internal/modes/session"
	"github.com/atomicstack/piradio/internal/system"
)

const DefaultName = "Settings"

type Mode struct {
	session.Session

	name   string
	runner system.Runner
}

func New(name string, runner system.Runner) *Mode {
	if name == "" {
		name = DefaultName
	}
	return &Mode{name: name, runner: runner}
}

func (m *Mode) Name() string { return m.name }

func (m *Mode) Menu() []menu.Entry {
	return []menu.Entry{
		menu.Item("IP Address", m.showIP),
		menu.Item("Restart", func() {
			m.confirm("Confirm restart", "Restarting...", "reboot")
		}),
		menu.Item("Shutdown", func() {
			m.confirm("Confirm shutdown", "Shutting down...", "poweroff")
		}),
	}
}

func (m *Mode) Enter(ctx context.Context) error {
	m.Begin(ctx)
	return nil
}

func (m *Mode) Exit(context.Context) error {
	return nil
}

func (m *Mode) showIP() {
	out, err := m.runner.Run(m.Context(), "hostname", "-I")
	if err != nil {
		logging.Error(err)
		m.Show(display.KeyMenuInfo, "Error!")
		return
	}
	addrs := strings.Fields(out)
	if len(addrs) == 0 {
		m.Show(display.KeyMenuInfo, "No address")
		return
	}
	m.Show(display.KeyMenuInfo, addrs[0])
	if len(addrs) > 1 {
		m.Show(display.KeyMenuInfo2, addrs[1])
	}
}

// confirm asks before a power command. Back leaves without running it.
// Notices go to the second info line since closing the confirmation menu
// redraws the first.
func (m *Mode) confirm(label, notice, command string) {
	m.OpenMenu([]menu.Entry{
		menu.Item(label, func() {
			m.Show(display.KeyMenuInfo2, notice)
			if _, err := m.runner.Run(context.Background(), "sudo", command); err != nil {
				logging.Error(err)
				m.Show(display.KeyMenuInfo2, "Error!")
			}
		}),
	})
}
