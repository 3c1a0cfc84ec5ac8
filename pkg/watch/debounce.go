package watch

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the Debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Timer

// Debouncer collects rapid triggers and runs the latest callback once after
// a quiet period. At most one callback is pending at any time.
type Debouncer struct {
	interval  time.Duration
	afterFunc AfterFunc

	mu       sync.Mutex
	timer    Timer
	callback func()
	seq      uint64
	stopped  bool
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return NewDebouncerWithTimer(interval, func(d time.Duration, f func()) Timer {
		return time.AfterFunc(d, f)
	})
}

// NewDebouncerWithTimer creates a debouncer that schedules through
// afterFunc.
func NewDebouncerWithTimer(interval time.Duration, afterFunc AfterFunc) *Debouncer {
	return &Debouncer{interval: interval, afterFunc: afterFunc}
}

// Trigger (re)starts the quiet period. Any pending callback is cancelled
// and callback runs instead when the period elapses without another
// Trigger. Triggers after Stop are ignored.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.callback = callback
	d.timer = d.afterFunc(d.interval, func() { d.fire(seq) })
}

// fire runs the callback registered by trigger seq unless it has been
// superseded or cancelled since.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq || d.callback == nil {
		d.mu.Unlock()
		return
	}
	cb := d.callback
	d.callback = nil
	d.timer = nil
	d.mu.Unlock()

	cb()
}

// Pending reports whether a callback is waiting for its timer.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.callback != nil
}

// Cancel drops the pending callback, if any. The debouncer stays usable.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
	d.seq++
}

// Stop cancels any pending callback and ignores later triggers. It is safe
// to call more than once.
func (d *Debouncer) Stop() {
	d.Cancel()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
