package ui

import tea "github.com/charmbracelet/bubbletea"

// maxFollowUps bounds how many chained commands one Send will run.
const maxFollowUps = 32

// Harness feeds messages to a simulator model without a terminal, running
// each returned command inline so tests observe its effects synchronously.
type Harness struct {
	model *Model
}

func NewHarness(model *Model) *Harness {
	return &Harness{model: model}
}

// Send delivers msg, then the messages produced by the resulting commands,
// until a command yields nothing.
func (h *Harness) Send(msg tea.Msg) {
	for i := 0; h.model != nil && msg != nil && i < maxFollowUps; i++ {
		next, cmd := h.model.Update(msg)
		if m, ok := next.(*Model); ok {
			h.model = m
		}
		if cmd == nil {
			return
		}
		msg = cmd()
	}
}

// Press sends a named key such as "enter", "left" or "q".
func (h *Harness) Press(names ...string) {
	for _, name := range names {
		h.Send(keyMsg(name))
	}
}

var namedKeys = map[string]tea.KeyType{
	"enter":  tea.KeyEnter,
	"left":   tea.KeyLeft,
	"right":  tea.KeyRight,
	"up":     tea.KeyUp,
	"down":   tea.KeyDown,
	"esc":    tea.KeyEsc,
	"ctrl+c": tea.KeyCtrlC,
	" ":      tea.KeySpace,
}

func keyMsg(name string) tea.KeyMsg {
	if kt, ok := namedKeys[name]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

func (h *Harness) Model() *Model {
	return h.model
}
