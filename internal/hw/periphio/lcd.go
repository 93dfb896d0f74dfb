package periphio

import (
	"fmt"
	"sync"

	"github.com/atomicstack/piradio/internal/hw"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/hd44780"
)

// fullBlock is the HD44780 ROM code for a solid cell.
const fullBlock = 0xFF

// LCDPins maps the 4-bit HD44780 bus onto BCM pins.
type LCDPins struct {
	RS        int
	Enable    int
	Data      [4]int
	Backlight int
}

// LCD drives a 20x4 HD44780 character display.
type LCD struct {
	mu        sync.Mutex
	dev       *hd44780.Dev
	backlight gpio.PinOut
}

// OpenLCD initialises the host drivers and the controller, then switches the
// backlight on.
func OpenLCD(pins LCDPins) (*LCD, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	lookup := func(n int) (gpio.PinIO, error) {
		p := byNumber(n)
		if p == nil {
			return nil, fmt.Errorf("%w: lcd: pin %d not found", hw.ErrHardwareUnavailable, n)
		}
		return p, nil
	}
	data := make([]gpio.PinOut, 0, len(pins.Data))
	for _, n := range pins.Data {
		p, err := lookup(n)
		if err != nil {
			return nil, err
		}
		data = append(data, p)
	}
	rs, err := lookup(pins.RS)
	if err != nil {
		return nil, err
	}
	en, err := lookup(pins.Enable)
	if err != nil {
		return nil, err
	}
	bl, err := lookup(pins.Backlight)
	if err != nil {
		return nil, err
	}
	return newLCD(data, rs, en, bl)
}

func newLCD(data []gpio.PinOut, rs, en, backlight gpio.PinOut) (*LCD, error) {
	dev, err := hd44780.New(data, rs, en)
	if err != nil {
		return nil, fmt.Errorf("%w: lcd: %v", hw.ErrHardwareUnavailable, err)
	}
	l := &LCD{dev: dev, backlight: backlight}
	if err := l.SetBacklight(true); err != nil {
		return nil, err
	}
	return l, nil
}

// rowAddress maps a row onto the driver's two-line cursor model. A 20x4
// module is two 40-cell lines folded in half: rows 2 and 3 continue rows 0
// and 1 at column 20 (DDRAM 0x94 and 0xD4).
func rowAddress(row int) (line, col uint8) {
	return uint8(row % 2), uint8((row / 2) * hw.Columns)
}

// WriteLine positions the cursor at the start of row and writes text, which
// must already be sanitised and padded to the display width.
func (l *LCD) WriteLine(row int, text string) error {
	if row < 0 || row >= hw.Rows {
		return fmt.Errorf("lcd: row %d out of range", row)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line, col := rowAddress(row)
	if err := l.dev.SetCursor(line, col); err != nil {
		return fmt.Errorf("lcd: set cursor: %w", err)
	}
	written := 0
	for _, r := range text {
		if written >= hw.Columns {
			break
		}
		c := byte(r)
		if r == '█' {
			c = fullBlock
		} else if r > 0x7e {
			c = '?'
		}
		if err := l.dev.WriteChar(c); err != nil {
			return fmt.Errorf("lcd: write: %w", err)
		}
		written++
	}
	return nil
}

func (l *LCD) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Halt issues the controller's clear-display instruction.
	if err := l.dev.Halt(); err != nil {
		return fmt.Errorf("lcd: clear: %w", err)
	}
	return nil
}

func (l *LCD) SetBacklight(on bool) error {
	lvl := gpio.Low
	if on {
		lvl = gpio.High
	}
	if err := l.backlight.Out(lvl); err != nil {
		return fmt.Errorf("lcd: backlight: %w", err)
	}
	return nil
}

// Close halts the controller.
func (l *LCD) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dev.Halt()
}
