// Package radio wires the knobs, the menu, the mode orchestrator, the volume
// control and the display into one running appliance.
package radio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/piradio/internal/backend"
	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/hw"
	"github.com/atomicstack/piradio/internal/logging"
	"github.com/atomicstack/piradio/internal/logging/events"
	"github.com/atomicstack/piradio/internal/menu"
	"github.com/atomicstack/piradio/internal/mode"
	"github.com/atomicstack/piradio/internal/rotary"
	"github.com/atomicstack/piradio/internal/volume"
)

const (
	DefaultClockPoll       = time.Second
	DefaultShutdownTimeout = 10 * time.Second
	clockFormat            = "15:04"
)

// Options configures a Radio.
type Options struct {
	Selector rotary.Pins
	Volume   rotary.Pins
	// MuteLED is lit while muted; zero disables it.
	MuteLED  int
	Debounce time.Duration

	Display display.Options
	Output  volume.Output
	Level   volume.Options

	Modes       []mode.Mode
	StartupMode string

	// Now drives the clock line; nil means time.Now.
	Now       func() time.Time
	ClockPoll time.Duration
	// ExitTimeout bounds each mode's Exit.
	ExitTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Radio is the composition root.
type Radio struct {
	opts Options
	gpio hw.GPIO
	disp hw.Display

	queue    *display.Queue
	renderer *display.Renderer
	engine   *menu.Engine
	orch     *mode.Orchestrator
	volume   *volume.Control

	selector *rotary.Input
	knob     *rotary.Input

	modes map[string]mode.Mode
	order []string
}

// New builds the radio. No pin is touched until Run.
func New(gpio hw.GPIO, disp hw.Display, opts Options) (*Radio, error) {
	if opts.Output == nil {
		return nil, errors.New("radio: volume output is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ClockPoll <= 0 {
		opts.ClockPoll = DefaultClockPoll
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.Display.Now == nil {
		opts.Display.Now = opts.Now
	}

	r := &Radio{
		opts:  opts,
		gpio:  gpio,
		disp:  disp,
		queue: display.NewQueue(),
		modes: make(map[string]mode.Mode, len(opts.Modes)),
	}
	r.renderer = display.NewRenderer(r.queue, disp, opts.Display)
	r.orch = mode.NewOrchestrator(r.queue)
	if opts.ExitTimeout > 0 {
		r.orch.SetExitTimeout(opts.ExitTimeout)
	}
	r.engine = menu.New(menu.Options{
		OnRender: func(label string) {
			r.queue.Submit(display.Text(display.KeyMenuInfo, label))
		},
		OnModeSelect: r.selectMode,
	})

	level := opts.Level
	userChange := level.OnChange
	level.OnChange = func(l int) {
		r.queue.Submit(display.Text(display.KeyVol, display.VolumeBar(l)))
		if userChange != nil {
			userChange(l)
		}
	}
	if opts.MuteLED != 0 && level.Indicator == nil {
		level.Indicator = func(muted bool) error {
			return gpio.Write(opts.MuteLED, hw.Level(muted))
		}
	}
	r.volume = volume.New(opts.Output, level)

	for _, m := range opts.Modes {
		name := m.Name()
		if _, dup := r.modes[name]; dup {
			return nil, fmt.Errorf("radio: duplicate mode %q", name)
		}
		r.modes[name] = m
		r.order = append(r.order, name)
		if a, ok := m.(mode.Attacher); ok {
			a.Attach(&host{orch: r.orch, engine: r.engine})
		}
		r.engine.AddMode(name, m.Menu())
	}

	r.selector = rotary.NewInput("selector", gpio, opts.Selector, opts.Debounce)
	r.knob = rotary.NewInput("volume", gpio, opts.Volume, opts.Debounce)
	return r, nil
}

// host is what a mode sees of the radio. Text and metadata go through the
// orchestrator's session gate.
type host struct {
	orch   *mode.Orchestrator
	engine *menu.Engine
}

func (h *host) ShowText(ctx context.Context, key display.Key, value string) {
	h.orch.Publish(ctx, display.Text(key, value))
}

func (h *host) ShowMetadata(ctx context.Context, meta display.Metadata) {
	h.orch.Publish(ctx, display.Meta(meta))
}

func (h *host) OpenMenu(entries []menu.Entry) {
	h.engine.OpenEphemeral(entries)
}

func (r *Radio) selectMode(name string) {
	m, ok := r.modes[name]
	if !ok {
		logging.Error(fmt.Errorf("radio: unknown mode %q", name))
		return
	}
	// Reselecting the active mode restarts it. Transition errors are logged
	// by the orchestrator.
	_ = r.orch.Switch(m)
}

// Run starts the inputs and loops and blocks until ctx is cancelled or a
// loop fails. On the way out the active mode is exited, the pins released and
// the display blanked.
func (r *Radio) Run(ctx context.Context) (err error) {
	r.prepare(ctx)

	if r.opts.MuteLED != 0 {
		if err := r.gpio.SetMode(r.opts.MuteLED, hw.Output, hw.PullNone); err != nil {
			return fmt.Errorf("mute led: %w", err)
		}
		if err := r.gpio.Write(r.opts.MuteLED, hw.Low); err != nil {
			return fmt.Errorf("mute led: %w", err)
		}
	}
	if err := r.selector.Start(); err != nil {
		return err
	}
	if err := r.knob.Start(); err != nil {
		_ = r.selector.Close()
		return err
	}
	defer func() {
		if serr := r.shutdown(); serr != nil && err == nil {
			err = serr
		}
	}()

	if err := r.volume.Start(ctx); err != nil {
		logging.Error(err)
	}
	r.startupMode()
	r.engine.Draw()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.renderer.Run(gctx)
	})
	g.Go(func() error {
		return r.selectorLoop(gctx)
	})
	g.Go(func() error {
		return r.volumeLoop(gctx)
	})
	clock := backend.StartPoller(gctx, r.opts.ClockPoll, r.clockTick())
	g.Go(func() error {
		clock.Wait()
		return nil
	})
	return g.Wait()
}

func (r *Radio) prepare(ctx context.Context) {
	for _, name := range r.order {
		p, ok := r.modes[name].(mode.Preparer)
		if !ok {
			continue
		}
		if err := p.Prepare(ctx); err != nil {
			logging.Error(fmt.Errorf("prepare %s: %w", name, err))
		}
	}
}

func (r *Radio) startupMode() {
	if r.opts.StartupMode == "" {
		return
	}
	idx := matchMode(r.order, r.opts.StartupMode)
	if idx < 0 {
		logging.Error(fmt.Errorf("radio: no mode matches %q", r.opts.StartupMode))
		return
	}
	r.selectMode(r.order[idx])
}

func (r *Radio) selectorLoop(ctx context.Context) error {
	rotations := r.selector.Rotations()
	presses := r.selector.Presses()
	for {
		select {
		case <-ctx.Done():
			return nil
		case rot, ok := <-rotations:
			if !ok {
				return nil
			}
			r.engine.Rotate(rot.Dir)
		case p, ok := <-presses:
			if !ok {
				return nil
			}
			if p.Pressed {
				r.engine.Select()
			}
		}
	}
}

func (r *Radio) volumeLoop(ctx context.Context) error {
	rotations := r.knob.Rotations()
	presses := r.knob.Presses()
	for {
		select {
		case <-ctx.Done():
			return nil
		case rot, ok := <-rotations:
			if !ok {
				return nil
			}
			if err := r.volume.Adjust(ctx, rot.Dir); err != nil {
				logging.Error(err)
			}
		case p, ok := <-presses:
			if !ok {
				return nil
			}
			if p.Pressed {
				if err := r.volume.ToggleMute(ctx); err != nil {
					logging.Error(err)
				}
			}
		}
	}
}

// clockTick submits the time line only when the minute changes.
func (r *Radio) clockTick() func(context.Context) {
	var last string
	return func(context.Context) {
		now := r.opts.Now().Format(clockFormat)
		if now == last {
			return
		}
		last = now
		r.queue.Submit(display.Text(display.KeyTime, now))
	}
}

func (r *Radio) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := r.orch.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := r.selector.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.knob.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.disp.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear display: %w", err))
	}
	if err := r.disp.SetBacklight(false); err != nil {
		errs = append(errs, fmt.Errorf("backlight: %w", err))
	}
	events.App.Stop("shutdown")
	return errors.Join(errs...)
}

// Queue exposes the display mailbox.
func (r *Radio) Queue() *display.Queue { return r.queue }

func (r *Radio) Renderer() *display.Renderer { return r.renderer }

func (r *Radio) Engine() *menu.Engine { return r.engine }

func (r *Radio) Orchestrator() *mode.Orchestrator { return r.orch }

func (r *Radio) Volume() *volume.Control { return r.volume }

// Modes lists the mode names in menu order.
func (r *Radio) Modes() []string {
	return append([]string(nil), r.order...)
}
