// Package volume maps the volume knob onto the audio output.
package volume

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/atomicstack/piradio/internal/logging/events"
	"github.com/atomicstack/piradio/internal/system"
)

const (
	DefaultStep    = 5
	DefaultInitial = 50
)

// Output applies a volume level in percent.
type Output interface {
	SetVolume(ctx context.Context, level int) error
}

// Pactl drives the default PulseAudio sink.
type Pactl struct {
	Runner system.Runner
	Sink   string
}

func (p Pactl) SetVolume(ctx context.Context, level int) error {
	sink := p.Sink
	if sink == "" {
		sink = "0"
	}
	_, err := p.Runner.Run(ctx, "pactl", "set-sink-volume", sink, strconv.Itoa(level)+"%")
	return err
}

// Options configures a Control.
type Options struct {
	Step int
	// Initial is applied as given, so 0 starts silent. Only values outside
	// 0..100 fall back to DefaultInitial; configuration supplies the default.
	Initial int
	// OnChange receives the effective level after every change.
	OnChange func(level int)
	// Indicator mirrors the mute state, e.g. onto an LED.
	Indicator func(muted bool) error
}

// Control tracks level and mute state.
type Control struct {
	out  Output
	opts Options

	mu    sync.Mutex
	level int
	saved int
	muted bool
}

// New returns a control at the initial level. Nothing is applied until Start.
func New(out Output, opts Options) *Control {
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	if opts.Initial < 0 || opts.Initial > 100 {
		opts.Initial = DefaultInitial
	}
	return &Control{out: out, opts: opts, level: opts.Initial, saved: opts.Initial}
}

// Start applies the initial level.
func (c *Control) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(ctx)
}

// Adjust moves the level one step in dir, clamped to 0..100. Turning the
// knob while muted only unmutes.
func (c *Control) Adjust(ctx context.Context, dir int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.muted {
		return c.toggleLocked(ctx)
	}
	c.level += c.opts.Step * dir
	if c.level < 0 {
		c.level = 0
	}
	if c.level > 100 {
		c.level = 100
	}
	return c.applyLocked(ctx)
}

// ToggleMute mutes, remembering the level, or restores it.
func (c *Control) ToggleMute(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toggleLocked(ctx)
}

func (c *Control) toggleLocked(ctx context.Context) error {
	if c.muted {
		c.level = c.saved
		c.muted = false
	} else {
		c.saved = c.level
		c.level = 0
		c.muted = true
	}
	err := c.applyLocked(ctx)
	if c.opts.Indicator != nil {
		if ierr := c.opts.Indicator(c.muted); ierr != nil && err == nil {
			err = fmt.Errorf("mute indicator: %w", ierr)
		}
	}
	return err
}

func (c *Control) applyLocked(ctx context.Context) error {
	events.Volume.Change(c.level, c.muted)
	err := c.out.SetVolume(ctx, c.level)
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.level)
	}
	if err != nil {
		return fmt.Errorf("set volume %d: %w", c.level, err)
	}
	return nil
}

// Level returns the effective level.
func (c *Control) Level() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Muted reports the mute state.
func (c *Control) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}
