package display

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atomicstack/piradio/internal/backend"
	"github.com/atomicstack/piradio/internal/format/field"
	"github.com/atomicstack/piradio/internal/hw"
	"github.com/atomicstack/piradio/internal/logging"
	"github.com/atomicstack/piradio/internal/logging/events"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultPoll        = 100 * time.Millisecond
	DefaultMinInterval = 50 * time.Millisecond
)

// Options tunes the render loop.
type Options struct {
	// Timeout is how long the control view stays up after a non-ignored write.
	Timeout time.Duration
	// Poll is the idle wake-up interval used to notice the timeout.
	Poll time.Duration
	// MinInterval rate-limits physical refreshes.
	MinInterval time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Poll <= 0 {
		o.Poll = DefaultPoll
	}
	if o.MinInterval < 0 {
		o.MinInterval = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Renderer is the only writer of the display.
type Renderer struct {
	queue    *Queue
	disp     hw.Display
	opts     Options
	throttle *backend.Throttle

	mu       sync.Mutex
	fields   map[Key]string
	view     View
	deadline time.Time
	written  [hw.Rows]string
	dirty    [hw.Rows]bool
}

// NewRenderer starts in the control view with the idle deadline one timeout
// from now.
func NewRenderer(queue *Queue, disp hw.Display, opts Options) *Renderer {
	opts = opts.withDefaults()
	r := &Renderer{
		queue:    queue,
		disp:     disp,
		opts:     opts,
		throttle: backend.NewThrottle(opts.MinInterval),
		fields:   DefaultFields(),
		view:     ControlView,
		deadline: opts.Now().Add(opts.Timeout),
	}
	for i := range r.dirty {
		r.dirty[i] = true
	}
	return r
}

// Run renders until ctx is cancelled.
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.Poll)
	defer ticker.Stop()

	for {
		if err := r.throttle.Wait(ctx); err != nil {
			return nil
		}
		if err := r.Step(r.opts.Now()); err != nil {
			events.Display.Error(err)
			logging.Error(err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-r.queue.Ready():
		case <-ticker.C:
		}
	}
}

// Step drains the mailbox, applies the view policy at now and writes the rows
// whose text changed since they were last written.
func (r *Renderer) Step(now time.Time) error {
	updates := r.queue.Drain()

	r.mu.Lock()
	for _, u := range updates {
		r.applyLocked(u, now)
	}
	if r.view == ControlView && now.After(r.deadline) {
		r.view = NowPlayingView
		events.Display.View(r.view.String())
	}
	lines := Lines(r.view, r.fields)
	r.mu.Unlock()

	var errs []error
	for row, text := range lines {
		r.mu.Lock()
		skip := !r.dirty[row] && r.written[row] == text
		r.mu.Unlock()
		if skip {
			continue
		}
		if err := r.disp.WriteLine(row, text); err != nil {
			errs = append(errs, fmt.Errorf("display row %d: %w", row, err))
			continue
		}
		r.mu.Lock()
		r.written[row] = text
		r.dirty[row] = false
		r.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (r *Renderer) applyLocked(u Update, now time.Time) {
	if u.Key == KeyMetadata {
		r.setLocked(KeyTitle, u.Meta.Title)
		r.setLocked(KeyArtist, u.Meta.Artist)
		r.setLocked(KeyAlbum, u.Meta.Album)
		return
	}
	r.setLocked(u.Key, u.Value)
	if resetsTimeout(u.Key) {
		if r.view != ControlView {
			events.Display.View(ControlView.String())
		}
		r.view = ControlView
		r.deadline = now.Add(r.opts.Timeout)
	}
}

func (r *Renderer) setLocked(key Key, value string) {
	value = Sanitize(value)
	if w, ok := widths[key]; ok && field.Overflows(value, w) {
		events.Display.Overflow(string(key), w, value)
	}
	r.fields[key] = value
}

// View returns the current view.
func (r *Renderer) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Field returns the current value of key.
func (r *Renderer) Field(key Key) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fields[key]
}

// Invalidate forces every row to be rewritten on the next step.
func (r *Renderer) Invalidate() {
	r.mu.Lock()
	for i := range r.dirty {
		r.dirty[i] = true
	}
	r.mu.Unlock()
}
