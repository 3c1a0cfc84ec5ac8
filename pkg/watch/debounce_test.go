package watch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeTimers records scheduled functions so tests can fire them by hand.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (ft *fakeTimers) afterFunc(_ time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{f: f}
	ft.timers = append(ft.timers, t)
	return t
}

// fireAll runs every scheduled function, stopped or not, the way a timer
// that already expired would.
func (ft *fakeTimers) fireAll() {
	ft.mu.Lock()
	timers := append([]*fakeTimer(nil), ft.timers...)
	ft.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func TestDebouncer_CoalescesTriggers(t *testing.T) {
	ft := &fakeTimers{}
	d := NewDebouncerWithTimer(100*time.Millisecond, ft.afterFunc)

	var calls []int
	for i := 0; i < 5; i++ {
		i := i
		d.Trigger(func() { calls = append(calls, i) })
	}
	if !d.Pending() {
		t.Fatal("Pending() = false after Trigger")
	}

	ft.fireAll()

	if len(calls) != 1 || calls[0] != 4 {
		t.Errorf("calls = %v, want [4]", calls)
	}
	if d.Pending() {
		t.Error("Pending() = true after firing")
	}
	for i, timer := range ft.timers[:4] {
		if !timer.stopped {
			t.Errorf("timer %d was not stopped when superseded", i)
		}
	}
}

func TestDebouncer_CancelAndStop(t *testing.T) {
	ft := &fakeTimers{}
	d := NewDebouncerWithTimer(time.Second, ft.afterFunc)

	var calls int
	d.Trigger(func() { calls++ })
	d.Cancel()
	ft.fireAll()
	if calls != 0 {
		t.Errorf("cancelled callback ran %d times", calls)
	}

	d.Trigger(func() { calls++ })
	ft.fireAll()
	if calls != 1 {
		t.Errorf("calls = %d after re-trigger, want 1", calls)
	}

	d.Stop()
	d.Stop()
	d.Trigger(func() { calls++ })
	ft.fireAll()
	if calls != 1 {
		t.Errorf("trigger after Stop ran, calls = %d", calls)
	}
}

func TestDebouncer_RealTimer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		d.Trigger(func() {
			if calls.Add(1) == 1 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced callback did not run")
	}
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}
