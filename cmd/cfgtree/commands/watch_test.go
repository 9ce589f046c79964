package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/config"
)

// lineWriter sends each write as one line.
type lineWriter chan string

func (w lineWriter) Write(p []byte) (int, error) {
	w <- strings.TrimSuffix(string(p), "\n")
	return len(p), nil
}

func newWatched(t *testing.T, data string) (*config.Config, *config.MemoryResource) {
	t.Helper()
	res := config.NewMemoryResource("app.yaml", []byte(data))
	cfg, err := config.New(res, codec.YAML{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cfg, res
}

func nextLine(t *testing.T, lines <-chan string) string {
	t.Helper()
	select {
	case l := <-lines:
		return l
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for output")
		return ""
	}
}

func TestWatchValue(t *testing.T) {
	cfg, res := newWatched(t, "port: 1\n")

	lines := make(lineWriter, 8)
	changes := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchValue(t.Context(), cfg, "port", changes, lines, 2)
	}()

	if got := nextLine(t, lines); got != "port = 1" {
		t.Fatalf("first line = %q", got)
	}

	res.Replace([]byte("port: 2\n"))
	changes <- struct{}{}
	if got := nextLine(t, lines); got != "port = 2" {
		t.Fatalf("second line = %q", got)
	}

	// An edit that leaves the value alone prints nothing.
	res.Replace([]byte("port: 2\nhost: x\n"))
	changes <- struct{}{}
	res.Replace([]byte("port: 3\n"))
	changes <- struct{}{}
	if got := nextLine(t, lines); got != "port = 3" {
		t.Fatalf("third line = %q", got)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchValue returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watchValue did not stop after count changes")
	}
	if len(lines) != 0 {
		t.Errorf("unexpected extra output %q", <-lines)
	}
}

func TestWatchValue_SkipsBrokenWrites(t *testing.T) {
	cfg, res := newWatched(t, "port: 1\n")

	lines := make(lineWriter, 8)
	changes := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchValue(t.Context(), cfg, "port", changes, lines, 1)
	}()
	nextLine(t, lines)

	res.Replace([]byte("port: [1\n"))
	changes <- struct{}{}
	res.Replace([]byte("port: 5\n"))
	changes <- struct{}{}

	if got := nextLine(t, lines); got != "port = 5" {
		t.Fatalf("line = %q", got)
	}
	if err := <-done; err != nil {
		t.Errorf("watchValue returned %v", err)
	}
}

func TestWatchValue_Stops(t *testing.T) {
	cfg, _ := newWatched(t, "")

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		lines := make(lineWriter, 1)
		done := make(chan error, 1)
		go func() {
			done <- watchValue(ctx, cfg, "missing", make(chan struct{}), lines, 0)
		}()
		if got := nextLine(t, lines); got != "missing = null" {
			t.Errorf("line = %q", got)
		}
		cancel()
		if err := <-done; err != nil {
			t.Errorf("watchValue returned %v", err)
		}
	})

	t.Run("channel closed", func(t *testing.T) {
		changes := make(chan struct{})
		close(changes)
		if err := watchValue(t.Context(), cfg, "missing", changes, make(lineWriter, 1), 0); err != nil {
			t.Errorf("watchValue returned %v", err)
		}
	})
}
