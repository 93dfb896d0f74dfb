package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes the Lip Gloss styles used by the simulator.
type Styles struct {
	Title     *lipgloss.Style
	Bezel     *lipgloss.Style
	Screen    *lipgloss.Style
	Backlight *lipgloss.Style
	Status    *lipgloss.Style
	Help      *lipgloss.Style
}

var defaultStyles = Styles{
	Title: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Bezel: ptr(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1),
	),
	Screen: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("22")).Background(lipgloss.Color("34")),
	),
	Backlight: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("82")),
	),
	Status: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Help: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// Default exposes the standard style set.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
