package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/verte-zerg/keyflash/internal/engine"
)

// Single runs one attempt and reports its result; nothing advances on its own.
type Single struct {
	session *engine.Session
	source  Source
	subs    listeners

	mu     sync.Mutex
	active bool
}

// NewSingle returns a controller loading its text from source.
func NewSingle(session *engine.Session, source Source) *Single {
	s := &Single{session: session, source: source}
	session.Subscribe(s.onSession)
	return s
}

// Session returns the driven session.
func (s *Single) Session() *engine.Session {
	return s.session
}

// Subscribe registers fn for flow events.
func (s *Single) Subscribe(fn func(Event)) func() {
	return s.subs.add(fn)
}

// Start loads a text and resets the session onto it.
func (s *Single) Start(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}
	text, err := s.source.Next(ctx)
	if err != nil {
		return fmt.Errorf("failed to load text: %w", err)
	}
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	s.session.Reset(text)
	s.subs.emit(Event{Kind: EventItemStarted, Item: 1})
	return nil
}

// Restart retries the current text.
func (s *Single) Restart(_ context.Context) error {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	s.session.Retry()
	s.subs.emit(Event{Kind: EventItemStarted, Item: 1})
	return nil
}

// Stop ignores any further completion.
func (s *Single) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *Single) onSession(ev engine.Event) {
	if ev.Kind != engine.EventCompleted {
		return
	}
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()
	summary := Summarize(s.session.Mode(), 1, []engine.Result{ev.Result})
	s.subs.emit(
		Event{Kind: EventItemDone, Item: 1, Result: ev.Result},
		Event{Kind: EventFinished, Summary: summary},
	)
}
