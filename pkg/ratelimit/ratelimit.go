// Package ratelimit coalesces bursts of calls with debounce and throttle.
//
// Both limiters schedule through a Scheduler so tests and event-loop hosts can
// drive time themselves. Both must be cancelled at teardown; a cancelled
// limiter drops pending and future calls.
package ratelimit

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It reports whether the call was pending.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(d time.Duration, f func()) Timer

// AfterFunc calls fn(d, f).
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer { return fn(d, f) }

// System schedules on real timers via time.AfterFunc.
var System Scheduler = SchedulerFunc(func(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
})

// Debouncer delays a call until no new call has arrived for Delay. Each call
// replaces the pending one, so a burst collapses to its last call.
type Debouncer struct {
	delay     time.Duration
	scheduler Scheduler

	mu        sync.Mutex
	timer     Timer
	cancelled bool
}

// NewDebouncer creates a debouncer. A nil scheduler means System.
func NewDebouncer(delay time.Duration, s Scheduler) *Debouncer {
	if s == nil {
		s = System
	}
	return &Debouncer{delay: delay, scheduler: s}
}

// Call schedules f, replacing any pending call.
func (d *Debouncer) Call(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelled {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	var t Timer
	t = d.scheduler.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.timer == t && !d.cancelled
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			f()
		}
	})
	d.timer = t
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending call and disables the debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelled = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Throttler runs at most one call per Interval. The first call in a quiet
// period runs immediately; calls during the interval are collapsed into one
// trailing call with the latest f, so the final state is never dropped.
type Throttler struct {
	interval  time.Duration
	scheduler Scheduler

	mu        sync.Mutex
	timer     Timer
	trailing  func()
	cancelled bool
}

// NewThrottler creates a throttler. A nil scheduler means System.
func NewThrottler(interval time.Duration, s Scheduler) *Throttler {
	if s == nil {
		s = System
	}
	return &Throttler{interval: interval, scheduler: s}
}

// Call runs f now if the throttler is idle, otherwise records it as the
// trailing call.
func (t *Throttler) Call(f func()) {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	if t.timer != nil {
		t.trailing = f
		t.mu.Unlock()
		return
	}
	t.arm()
	t.mu.Unlock()
	f()
}

// arm starts the interval timer. Callers hold t.mu.
func (t *Throttler) arm() {
	var timer Timer
	timer = t.scheduler.AfterFunc(t.interval, func() {
		t.mu.Lock()
		if t.timer != timer || t.cancelled {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		next := t.trailing
		t.trailing = nil
		if next != nil {
			t.arm()
		}
		t.mu.Unlock()
		if next != nil {
			next()
		}
	})
	t.timer = timer
}

// Pending reports whether a trailing call is waiting.
func (t *Throttler) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trailing != nil
}

// Cancel drops any trailing call and disables the throttler.
func (t *Throttler) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	t.trailing = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
