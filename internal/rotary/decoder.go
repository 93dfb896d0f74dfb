// Package rotary turns raw pin edges from a rotary encoder into detent
// rotations and debounced button presses.
package rotary

import (
	"time"

	"github.com/atomicstack/piradio/internal/hw"
)

// Decoder interprets edges on the A/B legs of a quadrature encoder.
//
// A rising edge on A while B is high is one clockwise detent (+1); a rising
// edge on B while A is high is one counter-clockwise detent (-1). An edge on
// the same leg as the previous edge, with no edge on the other leg between
// them, is treated as contact bounce: levels are updated but nothing is
// emitted. This is a last-pin filter, not a full gray-code state machine.
type Decoder struct {
	pinA, pinB     int
	levelA, levelB hw.Level
	last           int
	hasLast        bool
}

// NewDecoder returns a decoder with both legs at the pull-up level.
func NewDecoder(pinA, pinB int) *Decoder {
	return &Decoder{pinA: pinA, pinB: pinB, levelA: hw.High, levelB: hw.High}
}

// Seed replaces the assumed idle levels with measured ones.
func (d *Decoder) Seed(a, b hw.Level) {
	d.levelA = a
	d.levelB = b
}

// Feed consumes one edge. dir is +1, -1 or 0; noise reports a repeated edge
// on the same leg.
func (d *Decoder) Feed(e hw.Edge) (dir int, noise bool) {
	switch e.Pin {
	case d.pinA:
		d.levelA = e.Level
	case d.pinB:
		d.levelB = e.Level
	default:
		return 0, false
	}

	if d.hasLast && e.Pin == d.last {
		return 0, true
	}
	d.last = e.Pin
	d.hasLast = true

	if e.Level != hw.High {
		return 0, false
	}
	if e.Pin == d.pinA && d.levelB == hw.High {
		return 1, false
	}
	if e.Pin == d.pinB && d.levelA == hw.High {
		return -1, false
	}
	return 0, false
}

// Debouncer accepts a button edge only when it arrives at least window after
// the last accepted one. The first edge is always accepted and rejected edges
// do not move the window.
type Debouncer struct {
	window time.Duration
	last   time.Time
	seen   bool
}

// DefaultDebounce is the press window of the original hardware build.
const DefaultDebounce = 400 * time.Millisecond

// NewDebouncer returns a debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window < 0 {
		window = 0
	}
	return &Debouncer{window: window}
}

// Accept reports whether an edge at t passes the filter.
func (d *Debouncer) Accept(t time.Time) bool {
	if d.seen && t.Before(d.last.Add(d.window)) {
		return false
	}
	d.last = t
	d.seen = true
	return true
}
