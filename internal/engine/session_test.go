package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keyflash/internal/clock"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	events []Event
}

func (r *recorder) record(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T, target string, mode Mode) (*Session, *clock.Manual, *recorder) {
	t.Helper()
	clk := clock.NewManual(epoch)
	s := New(target, Config{Mode: mode}, clk)
	rec := &recorder{}
	s.Subscribe(rec.record)
	return s, clk, rec
}

func TestSessionStartsOnFirstRune(t *testing.T) {
	s, clk, rec := newTestSession(t, "cat", ModeWords)
	assert.Equal(t, StateIdle, s.Snapshot().State)

	clk.Advance(5 * time.Second)
	s.TypeRunes([]rune("c"))

	view := s.Snapshot()
	assert.Equal(t, StateRunning, view.State)
	assert.Equal(t, []EventKind{EventStarted, EventInput}, rec.kinds())
	assert.Equal(t, epoch.Add(5*time.Second), s.Progress().StartedAt)
}

func TestSessionCompletesByLengthOnly(t *testing.T) {
	s, _, rec := newTestSession(t, "cat", ModeWords)
	s.SetInput("xyz")

	view := s.Snapshot()
	assert.True(t, view.Completed())
	res, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, 0, res.Counts.Correct)
	assert.Equal(t, 3, res.Counts.Incorrect)
	assert.Equal(t, 3, res.TotalChars)
	assert.Equal(t, 1, rec.count(EventCompleted))
}

func TestSessionExactMatchOption(t *testing.T) {
	clk := clock.NewManual(epoch)
	s := New("cat", Config{Mode: ModeWords, RequireExactMatch: true}, clk)
	s.SetInput("xyz")
	assert.Equal(t, StateRunning, s.Snapshot().State)
	s.SetInput("cat")
	assert.Equal(t, StateCompleted, s.Snapshot().State)
}

func TestSessionCompletionIsSynchronous(t *testing.T) {
	s, clk, rec := newTestSession(t, "hi", ModeWords)
	s.TypeRunes([]rune("h"))
	clk.Advance(12 * time.Second)
	s.TypeRunes([]rune("i"))

	require.Equal(t, 1, rec.count(EventCompleted))
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, EventCompleted, last.Kind)
	assert.Equal(t, 12*time.Second, last.Result.Duration())
	assert.Equal(t, 5.0, last.Metrics.WPM)
	assert.Equal(t, 100.0, last.Metrics.Accuracy)
}

func TestSessionIgnoresInputAfterCompletion(t *testing.T) {
	s, _, _ := newTestSession(t, "ab", ModeWords)
	s.TypeRunes([]rune("abcd"))
	assert.Equal(t, "ab", s.Snapshot().Input)
	s.Backspace()
	assert.Equal(t, "ab", s.Snapshot().Input)
}

func TestSessionStrictPrefixCounting(t *testing.T) {
	s, _, _ := newTestSession(t, "abcd", ModeQuote)
	s.SetInput("axc")
	m := s.LiveMetrics()
	assert.Equal(t, 1, m.Correct)
	assert.Equal(t, 2, m.Incorrect)
	assert.Equal(t, 2, m.Mistakes)
}

func TestSessionFullScanCounting(t *testing.T) {
	s, _, _ := newTestSession(t, "abcd", ModeFlashcard)
	s.SetInput("axc")
	m := s.LiveMetrics()
	assert.Equal(t, 2, m.Correct)
	assert.Equal(t, 1, m.Incorrect)
}

func TestSessionMetricsAreDebounced(t *testing.T) {
	s, clk, rec := newTestSession(t, "hello world", ModeWords)
	s.TypeRunes([]rune("h"))
	clk.Advance(50 * time.Millisecond)
	s.TypeRunes([]rune("e"))
	clk.Advance(50 * time.Millisecond)
	s.TypeRunes([]rune("l"))
	assert.Zero(t, rec.count(EventMetrics))
	assert.Zero(t, s.Snapshot().Metrics.Correct)

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count(EventMetrics))
	assert.Equal(t, 3, s.Snapshot().Metrics.Correct)
}

func TestSessionIdleFlag(t *testing.T) {
	s, clk, rec := newTestSession(t, "hello", ModeWords)
	assert.True(t, s.Snapshot().Idle, "no input yet")

	s.TypeRunes([]rune("h"))
	assert.False(t, s.Snapshot().Idle)

	clk.Advance(999 * time.Millisecond)
	assert.False(t, s.Snapshot().Idle)
	clk.Advance(time.Millisecond)
	assert.True(t, s.Snapshot().Idle)
	assert.Equal(t, 1, rec.count(EventIdle))

	s.TypeRunes([]rune("e"))
	assert.False(t, s.Snapshot().Idle)
}

func TestSessionIdleDoesNotAffectProgress(t *testing.T) {
	s, clk, _ := newTestSession(t, "hello", ModeWords)
	s.TypeRunes([]rune("he"))
	clk.Advance(10 * time.Second)
	view := s.Snapshot()
	assert.Equal(t, StateRunning, view.State)
	assert.Equal(t, "he", view.Input)
}

func TestSessionResetCancelsPendingWork(t *testing.T) {
	s, clk, rec := newTestSession(t, "hello", ModeWords)
	s.TypeRunes([]rune("he"))
	s.Reset("world")
	clk.Advance(5 * time.Second)

	assert.Zero(t, rec.count(EventMetrics))
	assert.Zero(t, rec.count(EventIdle))
	view := s.Snapshot()
	assert.Equal(t, StateIdle, view.State)
	assert.Equal(t, "world", view.Target)
	assert.Empty(t, view.Input)
	assert.Zero(t, clk.Pending())
}

func TestSessionCtrlBackspace(t *testing.T) {
	s, _, _ := newTestSession(t, "the quick fox jumps", ModeWords)
	s.SetInput("the quick fox")
	assert.True(t, s.HandleKey(Key{Code: KeyBackspace, Ctrl: true}))
	assert.Equal(t, "the quick ", s.Snapshot().Input)
	assert.False(t, s.HandleKey(Key{Code: KeyBackspace}))
	assert.False(t, s.HandleKey(Key{Code: KeyTab}))
}

func TestSessionRetryKeepsTarget(t *testing.T) {
	s, clk, rec := newTestSession(t, "ab", ModeQuote)
	s.TypeRunes([]rune("ax"))
	assert.True(t, s.Snapshot().Completed())
	gen := s.Snapshot().Generation

	s.Retry()
	view := s.Snapshot()
	assert.Equal(t, "ab", view.Target)
	assert.Empty(t, view.Input)
	assert.Equal(t, StateIdle, view.State)
	assert.NotEqual(t, gen, view.Generation)
	assert.Equal(t, 1, rec.count(EventReset))

	clk.Advance(time.Second)
	s.TypeRunes([]rune("ab"))
	res, ok := s.Result()
	assert.True(t, ok)
	assert.Equal(t, 2, res.Counts.Correct)
}

func TestSessionCodeTabAndEnter(t *testing.T) {
	s, _, rec := newTestSession(t, "if (x) {\n    y();\n}", ModeCode)
	s.SetInput("if (x) {\n")
	assert.True(t, s.HandleKey(Key{Code: KeyTab}))
	assert.Equal(t, "if (x) {\n    ", s.Snapshot().Input)

	s.TypeRunes([]rune("y();"))
	assert.True(t, s.HandleKey(Key{Code: KeyEnter}))
	s.TypeRunes([]rune("}"))
	assert.True(t, s.Snapshot().Completed())
	assert.Equal(t, 1, rec.count(EventCompleted))
	res, _ := s.Result()
	assert.Equal(t, res.TotalChars, res.Counts.Correct)
}

func TestSessionEmptyTarget(t *testing.T) {
	s, clk, rec := newTestSession(t, "", ModeText)
	s.SetInput("abc")
	s.HandleKey(Key{Code: KeyBackspace, Ctrl: true})
	clk.Advance(time.Minute)

	view := s.Snapshot()
	assert.Empty(t, view.Classification.Classes)
	assert.Equal(t, StateIdle, view.State)
	assert.Zero(t, s.LiveMetrics().WPM)
	assert.Empty(t, rec.events)
}

func TestSessionPhase(t *testing.T) {
	clk := clock.NewManual(epoch)
	s := New("q?", Config{Mode: ModeFlashcard, Phase: PhaseQuestion}, clk)
	rec := &recorder{}
	s.Subscribe(rec.record)

	s.SetPhase(PhaseAnswer)
	s.SetPhase(PhaseAnswer)
	assert.Equal(t, 1, rec.count(EventPhase))
	assert.Equal(t, PhaseAnswer, s.Snapshot().Phase)
}

func TestSessionCharStats(t *testing.T) {
	s, clk, _ := newTestSession(t, "aa b", ModeText)
	s.TypeRunes([]rune("a"))
	clk.Advance(200 * time.Millisecond)
	s.TypeRunes([]rune("a"))
	s.TypeRunes([]rune(" x"))

	res, ok := s.Result()
	require.True(t, ok)
	require.Len(t, res.Chars, 2)
	assert.Equal(t, CharStat{Char: 'a', Correct: 2, LatencySum: 200 * time.Millisecond, LatencyCount: 1}, res.Chars[0])
	assert.Equal(t, 'b', res.Chars[1].Char)
	assert.Equal(t, 1, res.Chars[1].Incorrect)
}

func TestSessionUnsubscribe(t *testing.T) {
	clk := clock.NewManual(epoch)
	s := New("ab", Config{}, clk)
	rec := &recorder{}
	unsubscribe := s.Subscribe(rec.record)
	unsubscribe()
	s.TypeRunes([]rune("a"))
	assert.Empty(t, rec.events)
}

func TestSessionClose(t *testing.T) {
	s, clk, rec := newTestSession(t, "abc", ModeWords)
	s.TypeRunes([]rune("a"))
	s.Close()
	s.TypeRunes([]rune("b"))
	clk.Advance(time.Minute)
	assert.Equal(t, []EventKind{EventStarted, EventInput}, rec.kinds())
}
