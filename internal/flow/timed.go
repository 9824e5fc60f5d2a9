package flow

import (
	"context"
	"sync"

	"github.com/verte-zerg/keyflash/internal/clock"
	"github.com/verte-zerg/keyflash/internal/engine"
)

type runState int

type startResetter interface {
	Start()
	Reset()
}

const (
	runIdle runState = iota
	runLoading
	runActive
	runFinished
)

// Timed chains attempts while a countdown has time left: each completion loads
// the next text straight away, and the run finishes when the time is up.
type Timed struct {
	session   *engine.Session
	source    Source
	countdown Countdown
	clk       clock.Clock
	async     func(func())
	subs      listeners

	mu      sync.Mutex
	gen     uint64
	state   runState
	ctx     context.Context
	cancel  context.CancelFunc
	items   int
	results []engine.Result
	expiry  *clock.Task
	armed   bool
}

// TimedOption configures a Timed controller.
type TimedOption func(*Timed)

// WithAsync replaces the goroutine used to fetch texts, e.g. with a
// synchronous runner in tests.
func WithAsync(fn func(func())) TimedOption {
	return func(t *Timed) {
		t.async = fn
	}
}

// NewTimed returns a controller over session. A countdown that can Start and
// Reset, like *Timer, is reset by Restart and started by the first keystroke
// of the run; any other Countdown is only read.
func NewTimed(session *engine.Session, source Source, countdown Countdown, clk clock.Clock, opts ...TimedOption) *Timed {
	t := &Timed{
		session:   session,
		source:    source,
		countdown: countdown,
		clk:       clk,
		async:     func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(t)
	}
	session.Subscribe(t.onSession)
	return t
}

// Session returns the driven session.
func (t *Timed) Session() *engine.Session {
	return t.session
}

// Subscribe registers fn for flow events.
func (t *Timed) Subscribe(fn func(Event)) func() {
	return t.subs.add(fn)
}

// Start begins a run.
func (t *Timed) Start(ctx context.Context) error {
	return t.Restart(ctx)
}

// Restart abandons the current run, including in-flight fetches and the
// expiry check, and starts over.
func (t *Timed) Restart(ctx context.Context) error {
	if t.source == nil {
		return ErrNoSource
	}
	t.mu.Lock()
	t.stopLocked()
	gen := t.gen
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.items = 0
	t.results = nil
	t.armed = false
	t.state = runLoading
	t.expiry = clock.NewTask(t.clk, func() { t.onExpiry(gen) })
	if c, ok := t.countdown.(startResetter); ok {
		c.Reset()
	}
	fetchCtx := t.ctx
	t.mu.Unlock()
	t.fetch(fetchCtx, gen, 1)
	return nil
}

// Stop abandons the run without reporting a summary.
func (t *Timed) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.state = runIdle
}

func (t *Timed) stopLocked() {
	t.gen++
	if t.cancel != nil {
		t.cancel()
	}
	if t.expiry != nil {
		t.expiry.Cancel()
	}
}

func (t *Timed) fetch(ctx context.Context, gen uint64, item int) {
	t.subs.emit(Event{Kind: EventLoading, Item: item})
	t.async(func() {
		text, err := t.source.Next(ctx)
		t.deliver(gen, text, err)
	})
}

func (t *Timed) deliver(gen uint64, text string, err error) {
	t.mu.Lock()
	if gen != t.gen || t.state != runLoading {
		t.mu.Unlock()
		return
	}
	if err != nil {
		summary := t.finishLocked()
		t.mu.Unlock()
		t.subs.emit(Event{Kind: EventError, Err: err}, Event{Kind: EventFinished, Summary: summary})
		return
	}
	t.items++
	item := t.items
	t.state = runActive
	t.mu.Unlock()
	t.session.Reset(text)
	t.subs.emit(Event{Kind: EventItemStarted, Item: item})
}

func (t *Timed) onSession(ev engine.Event) {
	switch ev.Kind {
	case engine.EventStarted:
		t.mu.Lock()
		if t.state == runActive && !t.armed {
			t.armed = true
			if c, ok := t.countdown.(startResetter); ok {
				c.Start()
			}
			t.expiry.Schedule(t.countdown.Remaining())
		}
		t.mu.Unlock()
	case engine.EventCompleted:
		t.mu.Lock()
		if t.state != runActive {
			t.mu.Unlock()
			return
		}
		t.results = append(t.results, ev.Result)
		item := t.items
		if t.countdown.Remaining() <= 0 {
			summary := t.finishLocked()
			t.mu.Unlock()
			t.subs.emit(
				Event{Kind: EventItemDone, Item: item, Result: ev.Result},
				Event{Kind: EventFinished, Summary: summary},
			)
			return
		}
		t.state = runLoading
		gen, ctx := t.gen, t.ctx
		t.mu.Unlock()
		t.subs.emit(Event{Kind: EventItemDone, Item: item, Result: ev.Result})
		t.fetch(ctx, gen, item+1)
	}
}

func (t *Timed) onExpiry(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state == runIdle || t.state == runFinished {
		t.mu.Unlock()
		return
	}
	if left := t.countdown.Remaining(); left > 0 {
		t.expiry.Schedule(left)
		t.mu.Unlock()
		return
	}
	if t.state == runActive {
		if partial := t.session.Progress(); partial.Counts.Typed > 0 {
			t.results = append(t.results, partial)
		}
	}
	summary := t.finishLocked()
	t.mu.Unlock()
	t.subs.emit(Event{Kind: EventFinished, Summary: summary})
}

func (t *Timed) finishLocked() Summary {
	t.state = runFinished
	if t.cancel != nil {
		t.cancel()
	}
	t.expiry.Cancel()
	return Summarize(t.session.Mode(), len(t.results), t.results)
}
