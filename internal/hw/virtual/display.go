package virtual

import (
	"fmt"
	"sync"

	"github.com/atomicstack/piradio/internal/hw"
)

// Display records what would be shown on a 20x4 character LCD.
type Display struct {
	mu        sync.Mutex
	lines     [hw.Rows]string
	writes    [hw.Rows]int
	clears    int
	backlight bool
	changes   chan struct{}
}

// NewDisplay returns a blank display with the backlight on.
func NewDisplay() *Display {
	return &Display{backlight: true, changes: make(chan struct{}, 1)}
}

func (d *Display) WriteLine(row int, text string) error {
	if row < 0 || row >= hw.Rows {
		return fmt.Errorf("display: row %d out of range", row)
	}
	d.mu.Lock()
	d.lines[row] = text
	d.writes[row]++
	d.mu.Unlock()
	d.notify()
	return nil
}

func (d *Display) Clear() error {
	d.mu.Lock()
	d.lines = [hw.Rows]string{}
	d.clears++
	d.mu.Unlock()
	d.notify()
	return nil
}

func (d *Display) SetBacklight(on bool) error {
	d.mu.Lock()
	d.backlight = on
	d.mu.Unlock()
	d.notify()
	return nil
}

func (d *Display) notify() {
	select {
	case d.changes <- struct{}{}:
	default:
	}
}

// Changes signals after any write. Bursts coalesce into one signal.
func (d *Display) Changes() <-chan struct{} {
	return d.changes
}

// Lines returns a snapshot of the four rows.
func (d *Display) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, hw.Rows)
	copy(out, d.lines[:])
	return out
}

// Writes reports how many times row has been physically written.
func (d *Display) Writes(row int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if row < 0 || row >= hw.Rows {
		return 0
	}
	return d.writes[row]
}

// Clears reports how many times the display was cleared.
func (d *Display) Clears() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

// Backlight reports the backlight state.
func (d *Display) Backlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backlight
}
