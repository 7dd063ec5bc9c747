// Package schedule provides the batching contract between change
// notifications and the DOM applier: at most one invocation per
// coalesced burst of changes, after at least the configured quiet
// period. The applier itself knows nothing about scheduling; each
// invocation runs to completion.
package schedule

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid successive triggers into a single callback
// invocation after a quiet period. A re-trigger before the quiet period
// elapses supersedes the pending timer.
//
// All methods are safe for concurrent use. The callback never runs
// concurrently with itself from the debouncer.
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	timer   *time.Timer
	pending bool
	seq     uint64 // invalidates stale timer callbacks
	fn      func()
}

// NewDebouncer creates a debouncer that invokes fn once no trigger has
// arrived for at least quiet.
func NewDebouncer(quiet time.Duration, fn func()) *Debouncer {
	return &Debouncer{quiet: quiet, fn: fn}
}

// Trigger schedules the callback after the quiet period, superseding
// any pending schedule.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		if !d.pending || d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.mu.Unlock()
		d.fn()
	})
}

// Flush runs the callback immediately if a trigger is pending,
// canceling the scheduled invocation.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	run := d.pending
	d.pending = false
	d.mu.Unlock()

	if run {
		d.fn()
	}
}

// Cancel discards any pending invocation.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending reports whether an invocation is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
