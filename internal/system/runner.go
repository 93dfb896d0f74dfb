// Package system runs the external commands the radio drives: pactl, mpc,
// systemctl and the power commands.
package system

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/piradio/internal/logging/events"
)

// DefaultTimeout bounds every command so a hung helper cannot stall a mode
// worker or a transition.
const DefaultTimeout = 5 * time.Second

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Exec runs commands on the host.
type Exec struct {
	Timeout time.Duration
}

func (e Exec) Run(ctx context.Context, name string, args ...string) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	events.Command.Run(name, args)
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.WaitDelay = 500 * time.Millisecond
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		err = fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, output)
	}
	events.Command.Result(name, err)
	return output, err
}

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a shell line.
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// DryRun records commands instead of running them. Replies maps a rendered
// command line to canned output.
type DryRun struct {
	mu      sync.Mutex
	calls   []Call
	Replies map[string]string
	Errors  map[string]error
}

// NewDryRun returns an empty recorder.
func NewDryRun() *DryRun {
	return &DryRun{Replies: make(map[string]string), Errors: make(map[string]error)}
}

func (d *DryRun) Run(ctx context.Context, name string, args ...string) (string, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}
	events.Command.Run(name, args)
	d.mu.Lock()
	d.calls = append(d.calls, call)
	line := call.String()
	out := d.Replies[line]
	err := d.Errors[line]
	d.mu.Unlock()
	if err == nil {
		err = ctx.Err()
	}
	return out, err
}

// Reply sets the canned output for a command line.
func (d *DryRun) Reply(line, output string) {
	d.mu.Lock()
	d.Replies[line] = output
	d.mu.Unlock()
}

// Fail makes a command line return err.
func (d *DryRun) Fail(line string, err error) {
	d.mu.Lock()
	d.Errors[line] = err
	d.mu.Unlock()
}

// Calls returns the rendered command lines recorded so far.
func (d *DryRun) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.String()
	}
	return out
}
