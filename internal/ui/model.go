// Package ui is the terminal simulator: it shows the virtual LCD and turns
// key presses into knob edges on the virtual GPIO, so the whole input to
// display path runs without hardware.
package ui

import (
	"reflect"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/piradio/internal/hw/virtual"
	"github.com/atomicstack/piradio/internal/rotary"
	"github.com/atomicstack/piradio/internal/theme"
)

const defaultTitle = "PiRadio simulator"

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Config wires the simulator to the virtual hardware the radio runs on.
type Config struct {
	GPIO     *virtual.GPIO
	Display  *virtual.Display
	Selector rotary.Pins
	Volume   rotary.Pins
	Title    string
}

// Model implements the Bubble Tea model for the simulator.
type Model struct {
	cfg       Config
	keys      keyMap
	help      help.Model
	lines     []string
	backlight bool
	status    string
	width     int
	quitting  bool

	changes  <-chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	handlers map[reflect.Type]msgHandler
}

// NewModel returns a model showing the display's current contents.
func NewModel(cfg Config) *Model {
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	m := &Model{
		cfg:  cfg,
		keys: defaultKeyMap(),
		help: help.New(),
		done: make(chan struct{}),
	}
	if cfg.Display != nil {
		m.changes = cfg.Display.Changes()
		m.refresh()
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return waitForDisplay(m.changes, m.done)
}

// Stop releases the pending display wait. Quitting calls it; the caller
// should too once the program has returned for any other reason.
func (m *Model) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(displayChangedMsg{}): m.handleDisplayChangedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	if handler, ok := m.handlers[reflect.TypeOf(msg)]; ok {
		return handler
	}
	return nil
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	g := m.cfg.GPIO
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		m.Stop()
		return tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}
	if g == nil {
		return nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Left):
		g.Turn(m.cfg.Selector.A, m.cfg.Selector.B, -1)
		m.status = "selector ←"
	case key.Matches(keyMsg, m.keys.Right):
		g.Turn(m.cfg.Selector.A, m.cfg.Selector.B, 1)
		m.status = "selector →"
	case key.Matches(keyMsg, m.keys.Select):
		click(g, m.cfg.Selector.Button)
		m.status = "selector pressed"
	case key.Matches(keyMsg, m.keys.VolUp):
		g.Turn(m.cfg.Volume.A, m.cfg.Volume.B, 1)
		m.status = "volume →"
	case key.Matches(keyMsg, m.keys.VolDown):
		g.Turn(m.cfg.Volume.A, m.cfg.Volume.B, -1)
		m.status = "volume ←"
	case key.Matches(keyMsg, m.keys.Mute):
		click(g, m.cfg.Volume.Button)
		m.status = "volume pressed"
	}
	return nil
}

// click presses and releases an active-low button. The release falls inside
// the debounce window and is dropped like a real contact bounce would be.
func click(g *virtual.GPIO, pin int) {
	g.Press(pin)
	g.Release(pin)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.width = size.Width
	m.help.Width = size.Width
	return nil
}

func (m *Model) refresh() {
	m.lines = m.cfg.Display.Lines()
	m.backlight = m.cfg.Display.Backlight()
}

// Lines returns the display rows last seen by the model.
func (m *Model) Lines() []string {
	return append([]string(nil), m.lines...)
}
