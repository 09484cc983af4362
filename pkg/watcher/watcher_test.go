package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeConfig(t, "prompt: a\n")
	w, err := NewWatcher(path, WithDebounceDuration(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("prompt: modified\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("expected change to be detected")
	}
}

func TestWatcher_PollingFallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeConfig(t, "prompt: a\n")
	w, err := NewWatcher(path,
		WithDebounceDuration(50*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected watcher to be in polling mode")
	}

	go func() {
		time.Sleep(60 * time.Millisecond)
		os.WriteFile(path, []byte("prompt: polled and longer\n"), 0o644)
	}()

	select {
	case <-w.Changed():
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for change notification")
	}
}

func TestWatcher_PollingReportsRemoval(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeConfig(t, "prompt: a\n")
	errs := make(chan error, 8)
	w, err := NewWatcher(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(err error) {
			select {
			case errs <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errs:
		if !errors.Is(err, ErrFileRemoved) {
			t.Errorf("error = %v, want ErrFileRemoved", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("removal not reported")
	}
}

func TestWatcher_DoubleStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(writeConfig(t, "x: 1\n"), WithForcePoll(true), WithPollInterval(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != ErrAlreadyStarted {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	w.Stop()
	w.Stop()
	if err := w.Start(); err != nil {
		t.Errorf("restart after Stop = %v", err)
	}
	w.Stop()
}

func TestWatcher_MissingFileIsNotAnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	var errs atomic.Int32
	path := filepath.Join(t.TempDir(), "absent.yaml")
	w, err := NewWatcher(path,
		WithForcePoll(true),
		WithPollInterval(20*time.Millisecond),
		WithOnError(func(error) { errs.Add(1) }),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start on missing file: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	w.Stop()
	if errs.Load() != 0 {
		t.Errorf("missing file reported %d errors", errs.Load())
	}
}
