// Package mode defines the contract every media integration implements and
// the orchestrator that serialises switching between them.
package mode

import (
	"context"
	"fmt"

	"github.com/atomicstack/piradio/internal/display"
	"github.com/atomicstack/piradio/internal/menu"
)

// Mode is one media-source integration.
//
// Enter acquires whatever the mode needs and may start background workers
// bound to ctx; ctx is cancelled when the mode is switched away from. Exit
// must release everything Enter acquired, must not fail on a mode that never
// entered successfully, and should not return before its workers stopped.
type Mode interface {
	Name() string
	Menu() []menu.Entry
	Enter(ctx context.Context) error
	Exit(ctx context.Context) error
}

// Host is what a mode may call back into.
type Host interface {
	// ShowText submits a display field update scoped to ctx's session.
	ShowText(ctx context.Context, key display.Key, value string)
	// ShowMetadata submits a now-playing update scoped to ctx's session.
	ShowMetadata(ctx context.Context, meta display.Metadata)
	// OpenMenu opens a transient menu.
	OpenMenu(entries []menu.Entry)
}

// Attacher is implemented by modes that talk back to the radio.
type Attacher interface {
	Attach(Host)
}

// Phase names the lifecycle call that failed.
type Phase string

const (
	PhaseEnter Phase = "enter"
	PhaseExit  Phase = "exit"
)

// TransitionError reports a failed Enter or Exit. It is logged, never fatal.
type TransitionError struct {
	Mode  string
	Phase Phase
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("mode %q %s: %v", e.Mode, e.Phase, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Preparer is implemented by modes that need one-off setup before the first
// Enter, such as loading a playlist or stopping a daemon left running.
type Preparer interface {
	Prepare(ctx context.Context) error
}
