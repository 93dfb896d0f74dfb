// Package hw declares the hardware capabilities the radio core depends on:
// digital pins with edge notification and a character display.
package hw

import (
	"errors"
	"time"
)

// ErrHardwareUnavailable reports that the GPIO daemon or display could not be
// reached. It is fatal at startup.
var ErrHardwareUnavailable = errors.New("hardware unavailable")

// Level is the logical level of a digital pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// PinMode selects whether a pin is an input or output.
type PinMode uint8

const (
	Input PinMode = iota
	Output
)

// Pull selects the pull resistor configuration.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// EdgeMode selects which transitions trigger a notification.
type EdgeMode uint8

const (
	RisingEdge EdgeMode = iota + 1
	FallingEdge
	BothEdges
)

// Edge is a single observed transition on a pin.
type Edge struct {
	Pin   int
	Level Level
	Time  time.Time
}

// EdgeHandler is invoked from the provider's callback context. It must not
// block.
type EdgeHandler func(Edge)

// Cancel stops delivery for one registration and releases the pin.
type Cancel func() error

// GPIO is the pin capability. Pins are addressed by BCM number.
type GPIO interface {
	SetMode(pin int, mode PinMode, pull Pull) error
	Read(pin int) (Level, error)
	Write(pin int, level Level) error
	OnEdge(pin int, edge EdgeMode, handler EdgeHandler) (Cancel, error)
	// Close cancels every outstanding registration.
	Close() error
}

// Display is a fixed-geometry character display.
type Display interface {
	WriteLine(row int, text string) error
	Clear() error
	SetBacklight(on bool) error
}

// Display geometry.
const (
	Rows    = 4
	Columns = 20
)
