// Package netradio plays internet radio streams through MPD, driven with mpc.
package netradio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/atomicstack/piradio/internal/backend"
	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/logging"
	"github.com/atomicstack/piradio/internal/menu"
	"github.com/atomicstack/piradio/internal/modes/session"
	"github.com/atomicstack/piradio/internal/system"
)

const (
	DefaultName         = "Internet Radio"
	DefaultPoll         = time.Second
	DefaultCheckAddr    = "8.8.8.8:53"
	DefaultCheckTimeout = 5 * time.Second

	joinTimeout = 2 * time.Second
	artistLine  = "Listening to:"
)

// ErrOffline is returned by Enter when the connectivity check fails.
var ErrOffline = errors.New("no internet connection")

type Station struct {
	Name string
	URL  string
}

// Checker reports whether the network is reachable.
type Checker func(ctx context.Context) error

// DialCheck opens a TCP connection to addr, the way a resolver would.
func DialCheck(addr string, timeout time.Duration) Checker {
	return func(ctx context.Context) error {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

type Options struct {
	// Poll is the now-playing refresh interval.
	Poll time.Duration
	// Check runs before playback starts; nil skips it.
	Check Checker
}

type Mode struct {
	session.Session

	name     string
	stations []Station
	runner   system.Runner
	opts     Options

	mu      sync.Mutex
	current int
	title   string
	worker  *backend.Poller
}

func New(name string, stations []Station, runner system.Runner, opts Options) *Mode {
	if name == "" {
		name = DefaultName
	}
	if opts.Poll <= 0 {
		opts.Poll = DefaultPoll
	}
	return &Mode{
		name:     name,
		stations: append([]Station(nil), stations...),
		runner:   runner,
		opts:     opts,
	}
}

func (m *Mode) Name() string { return m.name }

// Menu lists one entry per station.
func (m *Mode) Menu() []menu.Entry {
	entries := make([]menu.Entry, 0, len(m.stations))
	for i, st := range m.stations {
		entries = append(entries, menu.Item(st.Name, func() {
			if err := m.play(m.Context(), i); err != nil {
				logging.Error(err)
			}
		}))
	}
	return entries
}

// Prepare loads the station list into the MPD playlist.
func (m *Mode) Prepare(ctx context.Context) error {
	if _, err := m.runner.Run(ctx, "mpc", "clear"); err != nil {
		return fmt.Errorf("clear playlist: %w", err)
	}
	for _, st := range m.stations {
		if _, err := m.runner.Run(ctx, "mpc", "add", st.URL); err != nil {
			return fmt.Errorf("add %s: %w", st.Name, err)
		}
	}
	return nil
}

// Enter resumes the last tuned station, the first one on a fresh start, and
// starts the now-playing worker.
func (m *Mode) Enter(ctx context.Context) error {
	m.Begin(ctx)
	if len(m.stations) == 0 {
		return errors.New("no stations configured")
	}
	if m.opts.Check != nil {
		if err := m.opts.Check(ctx); err != nil {
			m.ShowIn(ctx, display.KeyMenuInfo, "No internet")
			return fmt.Errorf("%w: %v", ErrOffline, err)
		}
	}

	m.mu.Lock()
	current := m.current
	m.mu.Unlock()
	err := m.play(ctx, current)

	worker := backend.StartPoller(ctx, m.opts.Poll, m.refresh)
	m.mu.Lock()
	m.worker = worker
	m.mu.Unlock()
	return err
}

func (m *Mode) Exit(ctx context.Context) error {
	m.mu.Lock()
	worker := m.worker
	m.worker = nil
	m.mu.Unlock()

	var errs []error
	if worker != nil {
		if err := worker.StopWait(joinTimeout); err != nil {
			errs = append(errs, fmt.Errorf("now-playing worker: %w", err))
		}
	}
	if _, err := m.runner.Run(ctx, "mpc", "stop"); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Current returns the index of the last tuned station.
func (m *Mode) Current() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Mode) play(ctx context.Context, index int) error {
	if index < 0 || index >= len(m.stations) {
		return fmt.Errorf("station %d out of range", index)
	}
	_, err := m.runner.Run(ctx, "mpc", "play", strconv.Itoa(index+1))
	if err != nil {
		m.ShowIn(ctx, display.KeyMenuInfo, "Error!")
	}
	m.mu.Lock()
	m.current = index
	m.title = ""
	m.mu.Unlock()
	m.Metadata(ctx, display.Metadata{Artist: artistLine, Album: m.stations[index].Name})
	return err
}

// refresh publishes the stream title when it changes. ctx belongs to the
// session that started the worker.
func (m *Mode) refresh(ctx context.Context) {
	out, err := m.runner.Run(ctx, "mpc", "current", "-f", "%title%")
	if err != nil || out == "" {
		return
	}
	m.mu.Lock()
	if out == m.title {
		m.mu.Unlock()
		return
	}
	m.title = out
	station := m.stations[m.current].Name
	m.mu.Unlock()
	m.Metadata(ctx, display.Metadata{Title: out, Artist: artistLine, Album: station})
}
