package flow

import (
	"sync"
	"time"

	"github.com/verte-zerg/keyflash/internal/clock"
)

// Countdown is read-only access to a running time limit.
type Countdown interface {
	Remaining() time.Duration
}

// Timer is a Countdown that starts on demand.
type Timer struct {
	clk      clock.Clock
	duration time.Duration

	mu        sync.Mutex
	startedAt time.Time
}

// NewTimer returns a stopped countdown of d.
func NewTimer(clk clock.Clock, d time.Duration) *Timer {
	return &Timer{clk: clk, duration: d}
}

// Start begins the countdown; later calls are no-ops.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startedAt.IsZero() {
		t.startedAt = t.clk.Now()
	}
}

// Reset stops the countdown and restores the full duration.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Time{}
}

// Started reports whether Start has been called since the last Reset.
func (t *Timer) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.startedAt.IsZero()
}

// Duration returns the full time limit.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Remaining returns the time left, never negative.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startedAt.IsZero() {
		return t.duration
	}
	left := t.duration - t.clk.Now().Sub(t.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether no time is left.
func (t *Timer) Expired() bool {
	return t.Remaining() <= 0
}
