package system

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"testing"
	"time"
)

func TestDryRunRecordsAndReplies(t *testing.T) {
	d := NewDryRun()
	d.Reply("mpc current", "Artist - Title")
	d.Fail("systemctl start shairport-sync", errors.New("unit not found"))

	out, err := d.Run(context.Background(), "mpc", "current")
	if err != nil || out != "Artist - Title" {
		t.Fatalf("expected canned reply, got %q %v", out, err)
	}
	if _, err := d.Run(context.Background(), "systemctl", "start", "shairport-sync"); err == nil {
		t.Fatalf("expected canned error")
	}
	want := []string{"mpc current", "systemctl start shairport-sync"}
	if got := d.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDryRunHonoursCancelledContext(t *testing.T) {
	d := NewDryRun()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Run(ctx, "mpc", "stop"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecRunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	out, err := Exec{Timeout: time.Second}.Run(context.Background(), "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "hello" {
		t.Fatalf("expected hello, got %q", out)
	}
}

func TestExecTimesOut(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	_, err := Exec{Timeout: 50 * time.Millisecond}.Run(context.Background(), "sh", "-c", "sleep 5")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}
