package ui

import tea "github.com/charmbracelet/bubbletea"

type displayChangedMsg struct{}

// waitForDisplay blocks until the display changes or done is closed, in
// which case it yields nothing.
func waitForDisplay(changes, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-changes:
			return displayChangedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) handleDisplayChangedMsg(tea.Msg) tea.Cmd {
	if m.cfg.Display != nil {
		m.refresh()
	}
	if m.changes == nil || m.quitting {
		return nil
	}
	return waitForDisplay(m.changes, m.done)
}
