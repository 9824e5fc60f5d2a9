// Package flow decides what happens when a typing attempt completes: show
// results, chain the next item under a countdown, or walk a flashcard deck.
package flow

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/keyflash/internal/engine"
)

// ErrNoSource is returned when a controller has nothing to load texts from.
var ErrNoSource = errors.New("no text source")

// Source supplies target texts. Next may block; it must honour ctx.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

// Next implements Source.
func (f SourceFunc) Next(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static cycles through fixed texts.
type Static struct {
	mu    sync.Mutex
	texts []string
	next  int
}

// NewStatic returns a Source over texts.
func NewStatic(texts ...string) *Static {
	return &Static{texts: texts}
}

// Next implements Source.
func (s *Static) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.texts) == 0 {
		return "", ErrNoSource
	}
	text := s.texts[s.next%len(s.texts)]
	s.next++
	return text, nil
}

// EventKind identifies a flow notification.
type EventKind int

const (
	EventItemStarted EventKind = iota
	EventLoading
	EventItemDone
	EventPhaseChanged
	EventFinished
	EventError
)

// Event is a flow notification.
type Event struct {
	Kind    EventKind
	Item    int
	Phase   engine.Phase
	Result  engine.Result
	Summary Summary
	Err     error
}

// Summary aggregates the attempts of one run.
type Summary struct {
	Mode      engine.Mode
	Items     int
	Results   []engine.Result
	StartedAt time.Time
	EndedAt   time.Time
	Counts    engine.Counts
	Metrics   engine.Metrics
}

// Chars merges per-character stats across all attempts.
func (s Summary) Chars() []engine.CharStat {
	merged := map[rune]*engine.CharStat{}
	for _, res := range s.Results {
		for _, cs := range res.Chars {
			entry, ok := merged[cs.Char]
			if !ok {
				entry = &engine.CharStat{Char: cs.Char}
				merged[cs.Char] = entry
			}
			entry.Correct += cs.Correct
			entry.Incorrect += cs.Incorrect
			entry.LatencySum += cs.LatencySum
			entry.LatencyCount += cs.LatencyCount
		}
	}
	out := make([]engine.CharStat, 0, len(merged))
	for _, cs := range merged {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}

// Summarize aggregates results. Metrics are computed over the summed typing
// time, excluding pauses between items.
func Summarize(mode engine.Mode, items int, results []engine.Result) Summary {
	s := Summary{Mode: mode, Items: items, Results: results}
	var elapsed time.Duration
	for _, r := range results {
		s.Counts.Correct += r.Counts.Correct
		s.Counts.Incorrect += r.Counts.Incorrect
		s.Counts.Typed += r.Counts.Typed
		elapsed += r.Duration()
		if !r.StartedAt.IsZero() && (s.StartedAt.IsZero() || r.StartedAt.Before(s.StartedAt)) {
			s.StartedAt = r.StartedAt
		}
		if r.EndedAt.After(s.EndedAt) {
			s.EndedAt = r.EndedAt
		}
	}
	s.Metrics = engine.ComputeMetrics(s.Counts, engine.ProfileFor(mode).Basis, elapsed)
	return s
}

// Controller drives a session through a run of one or more attempts.
type Controller interface {
	Start(ctx context.Context) error
	Restart(ctx context.Context) error
	Stop()
	Subscribe(fn func(Event)) func()
	Session() *engine.Session
}

type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(Event)
}

func (l *listeners) add(fn func(Event)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = map[int]func(Event){}
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners) emit(events ...Event) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()
	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
