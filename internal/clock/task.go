package clock

import (
	"sync"
	"time"
)

// Task is a cancellable callback. Scheduling replaces any pending run, so
// repeated calls debounce; Cancel guarantees a run that has not started yet
// never happens.
type Task struct {
	clk Clock
	fn  func()

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewTask binds fn to clk without scheduling it.
func NewTask(clk Clock, fn func()) *Task {
	return &Task{clk: clk, fn: fn}
}

// Schedule runs the task after d, dropping any earlier pending run.
func (t *Task) Schedule(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
	gen := t.gen
	t.timer = t.clk.AfterFunc(d, func() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		t.fn()
	})
}

// Cancel drops the pending run, if any.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
}

// Pending reports whether a run is scheduled.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *Task) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
