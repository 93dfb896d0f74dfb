// Package logging appends errors and optional JSON trace entries to the
// radio's log file. Errors are mirrored to the console writer so they reach
// the journal when the radio runs as a service.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultLogFile = "piradio.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	console      io.Writer
	runID        = uuid.NewString()
)

// RunID identifies the current process in log and trace output.
func RunID() string {
	return runID
}

// Configure sets the log file. An empty path restores the default; missing
// directories are created.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// SetConsole mirrors error lines to w. nil turns mirroring off.
func SetConsole(w io.Writer) {
	mu.Lock()
	console = w
	mu.Unlock()
}

func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Error records err. nil is ignored.
func Error(err error) {
	if err == nil {
		return
	}
	line := fmt.Sprintf("%s [%s] error: %v\n", time.Now().Format(time.DateTime), runID[:8], err)

	mu.Lock()
	path, w := logPath, console
	mu.Unlock()

	if w != nil {
		_, _ = io.WriteString(w, line)
	}
	if err := appendTo(path, func(f io.Writer) error {
		_, err := io.WriteString(f, line)
		return err
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
	}
}

// Trace appends one JSON line when tracing is enabled.
func Trace(event string, payload interface{}) {
	mu.Lock()
	enabled, path := traceEnabled, logPath
	mu.Unlock()
	if !enabled {
		return
	}

	entry := struct {
		Time    time.Time   `json:"time"`
		Run     string      `json:"run"`
		Event   string      `json:"event"`
		Payload interface{} `json:"payload,omitempty"`
	}{
		Time:    time.Now().UTC(),
		Run:     runID,
		Event:   event,
		Payload: payload,
	}
	if err := appendTo(path, func(f io.Writer) error {
		return json.NewEncoder(f).Encode(entry)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
	}
}

func appendTo(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
