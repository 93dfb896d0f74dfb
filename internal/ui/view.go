package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atomicstack/piradio/internal/format/field"
	"github.com/atomicstack/piradio/internal/hw"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	screen := styles.Screen
	if m.backlight {
		screen = styles.Backlight
	}
	rows := make([]string, hw.Rows)
	for i := range rows {
		text := ""
		if i < len(m.lines) {
			text = m.lines[i]
		}
		rows[i] = screen.Render(field.Fit(text, hw.Columns, field.AlignLeft))
	}
	sections := []string{
		styles.Title.Render(m.cfg.Title),
		styles.Bezel.Render(strings.Join(rows, "\n")),
	}
	if m.status != "" {
		sections = append(sections, styles.Status.Render(m.status))
	}
	sections = append(sections, styles.Help.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
