package schedule_test

import (
	"sync/atomic"
	"testing"
	"time"

	"typograf/internal/schedule"
)

func TestTriggerCoalesces(t *testing.T) {
	var runs atomic.Int32
	d := schedule.NewDebouncer(50*time.Millisecond, func() { runs.Add(1) })

	// a burst of triggers inside the quiet period collapses to one run
	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(250 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("callback ran %d times for one burst, want 1", got)
	}
	if d.IsPending() {
		t.Error("IsPending() = true after the burst settled")
	}
}

func TestSeparateBursts(t *testing.T) {
	var runs atomic.Int32
	d := schedule.NewDebouncer(30*time.Millisecond, func() { runs.Add(1) })

	d.Trigger()
	time.Sleep(150 * time.Millisecond)
	d.Trigger()
	time.Sleep(150 * time.Millisecond)

	if got := runs.Load(); got != 2 {
		t.Errorf("callback ran %d times for two separated bursts, want 2", got)
	}
}

func TestCancel(t *testing.T) {
	var runs atomic.Int32
	d := schedule.NewDebouncer(30*time.Millisecond, func() { runs.Add(1) })

	d.Trigger()
	d.Cancel()

	time.Sleep(150 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("callback ran %d times after Cancel, want 0", got)
	}
	if d.IsPending() {
		t.Error("IsPending() = true after Cancel")
	}
}

func TestFlush(t *testing.T) {
	var runs atomic.Int32
	d := schedule.NewDebouncer(time.Hour, func() { runs.Add(1) })

	d.Trigger()
	d.Flush()
	if got := runs.Load(); got != 1 {
		t.Fatalf("callback ran %d times after Flush, want 1", got)
	}

	// flushing with nothing pending is a no-op
	d.Flush()
	if got := runs.Load(); got != 1 {
		t.Errorf("callback ran %d times after idle Flush, want 1", got)
	}
}

func TestIsPending(t *testing.T) {
	d := schedule.NewDebouncer(time.Hour, func() {})
	if d.IsPending() {
		t.Error("IsPending() = true before any trigger")
	}
	d.Trigger()
	if !d.IsPending() {
		t.Error("IsPending() = false after Trigger")
	}
	d.Cancel()
}
