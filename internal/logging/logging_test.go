package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTraceWritesJSONWithRunID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trace.log")
	Configure(path)
	SetTraceEnabled(true)
	t.Cleanup(func() {
		SetTraceEnabled(false)
		Configure("")
	})

	Trace("menu.rotate", map[string]interface{}{"index": 2})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("decode trace: %v", err)
	}
	if entry["event"] != "menu.rotate" {
		t.Fatalf("expected event menu.rotate, got %v", entry["event"])
	}
	if entry["run"] != RunID() {
		t.Fatalf("expected run %s, got %v", RunID(), entry["run"])
	}
}

func TestTraceDisabledWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	Configure(path)
	SetTraceEnabled(false)
	t.Cleanup(func() { Configure("") })

	Trace("ignored", nil)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no trace file, got %v", err)
	}
}

func TestErrorAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	Configure(path)
	t.Cleanup(func() { Configure("") })

	Error(errors.New("mode exit failed"))
	Error(nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "mode exit failed") {
		t.Fatalf("expected error text in log, got %q", string(data))
	}
	if n := strings.Count(string(data), "\n"); n != 1 {
		t.Fatalf("expected 1 line, got %d", n)
	}
}

func TestErrorMirrorsToConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.log")
	Configure(path)
	var buf strings.Builder
	SetConsole(&buf)
	t.Cleanup(func() {
		SetConsole(nil)
		Configure("")
	})

	Error(errors.New("lcd write failed"))

	if !strings.Contains(buf.String(), "lcd write failed") {
		t.Fatalf("expected console mirror, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), RunID()[:8]) {
		t.Fatalf("expected run id prefix, got %q", buf.String())
	}
}
