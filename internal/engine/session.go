package engine

import (
	"slices"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/keyflash/internal/clock"
)

const (
	// DefaultIdleAfter is how long without input before the cursor blinks.
	DefaultIdleAfter = time.Second
	// DefaultDebounce delays live metric recomputation after input.
	DefaultDebounce = 100 * time.Millisecond
)

// Config tunes a session.
type Config struct {
	Mode      Mode
	Phase     Phase
	IdleAfter time.Duration
	Debounce  time.Duration
	TabWidth  int
	// RequireExactMatch completes only when the input equals the target.
	// By default reaching the target length completes the attempt.
	RequireExactMatch bool
}

func (c Config) withDefaults() Config {
	if c.IdleAfter <= 0 {
		c.IdleAfter = DefaultIdleAfter
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.TabWidth <= 0 {
		c.TabWidth = DefaultTabWidth
	}
	return c
}

type charStat struct {
	correct      int
	incorrect    int
	latencySum   time.Duration
	latencyCount int
}

// Session is one typing attempt against a target text. It is safe for
// concurrent use; subscribers are called without the session lock held.
type Session struct {
	mu      sync.Mutex
	cfg     Config
	profile Profile
	clk     clock.Clock

	target Text
	input  []rune
	state  State
	phase  Phase
	idle   bool
	closed bool

	startedAt     time.Time
	endedAt       time.Time
	prevCorrectAt time.Time
	metrics       Metrics
	chars         map[rune]*charStat

	gen         uint64
	idleTask    *clock.Task
	metricsTask *clock.Task

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Event)
}

// New creates an idle session for target.
func New(target string, cfg Config, clk clock.Clock) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:     cfg,
		profile: ProfileFor(cfg.Mode),
		clk:     clk,
		phase:   cfg.Phase,
		subs:    map[int]func(Event){},
	}
	s.resetLocked(target)
	return s
}

// Subscribe registers fn for session events and returns an unsubscribe func.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Mode returns the session's mode.
func (s *Session) Mode() Mode {
	return s.cfg.Mode
}

// SetInput replaces the typed input, as after an input-change event.
func (s *Session) SetInput(raw string) {
	s.mu.Lock()
	events := s.setInputLocked([]rune(norm.NFC.String(raw)))
	s.mu.Unlock()
	s.emit(events)
}

// TypeRunes appends runes one at a time, stopping once the attempt completes.
func (s *Session) TypeRunes(runes []rune) {
	s.mu.Lock()
	var events []Event
	for _, r := range runes {
		if s.state == StateCompleted {
			break
		}
		next := append(cloneRunes(s.input), r)
		events = append(events, s.setInputLocked(next)...)
	}
	s.mu.Unlock()
	s.emit(events)
}

// Backspace removes the last typed rune.
func (s *Session) Backspace() {
	s.mu.Lock()
	var events []Event
	if len(s.input) > 0 {
		events = s.setInputLocked(cloneRunes(s.input[:len(s.input)-1]))
	}
	s.mu.Unlock()
	s.emit(events)
}

// HandleKey applies the mode's special-key behaviour. It returns true when the
// key was consumed and must not reach default input handling.
func (s *Session) HandleKey(key Key) bool {
	s.mu.Lock()
	if s.closed || s.state == StateCompleted {
		s.mu.Unlock()
		return false
	}
	next, handled := s.profile.Keys.Apply(key, s.target, s.input)
	if !handled {
		s.mu.Unlock()
		return false
	}
	events := s.setInputLocked(next)
	s.mu.Unlock()
	s.emit(events)
	return true
}

// Reset starts a new attempt on target, cancelling pending timers so no
// callback from the previous attempt can touch the new one.
func (s *Session) Reset(target string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.resetLocked(target)
	ev := Event{Kind: EventReset, Generation: s.gen, Phase: s.phase}
	s.mu.Unlock()
	s.emit([]Event{ev})
}

// Retry restarts the attempt on the current target.
func (s *Session) Retry() {
	s.mu.Lock()
	target := s.target.String()
	s.mu.Unlock()
	s.Reset(target)
}

// SetPhase changes the flashcard phase.
func (s *Session) SetPhase(p Phase) {
	s.mu.Lock()
	if s.closed || s.phase == p {
		s.mu.Unlock()
		return
	}
	s.phase = p
	ev := Event{Kind: EventPhase, Generation: s.gen, Phase: p}
	s.mu.Unlock()
	s.emit([]Event{ev})
}

// Close cancels pending timers; later input is ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.idleTask.Cancel()
	s.metricsTask.Cancel()
}

// Snapshot returns the current classification, state and debounced metrics.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Mode:           s.cfg.Mode,
		Phase:          s.phase,
		State:          s.state,
		Idle:           s.idle,
		Target:         s.target.String(),
		Input:          string(s.input),
		Classification: Classify(s.target.runes, s.input),
		Metrics:        s.metrics,
		Generation:     s.gen,
	}
}

// LiveMetrics computes metrics now, bypassing the debounce.
func (s *Session) LiveMetrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeLocked(s.clk.Now())
}

// Result returns the outcome once the attempt has completed.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCompleted {
		return Result{}, false
	}
	return s.resultLocked(s.endedAt), true
}

// Progress returns the attempt so far, ended at the current time.
func (s *Session) Progress() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := s.endedAt
	if s.state != StateCompleted {
		end = s.clk.Now()
	}
	return s.resultLocked(end)
}

func (s *Session) resetLocked(target string) {
	if s.idleTask != nil {
		s.idleTask.Cancel()
		s.metricsTask.Cancel()
	}
	s.gen++
	gen := s.gen
	s.idleTask = clock.NewTask(s.clk, func() { s.onIdle(gen) })
	s.metricsTask = clock.NewTask(s.clk, func() { s.onMetricsDue(gen) })

	s.target = NewText(NormalizeTarget(s.cfg.Mode, target, s.cfg.TabWidth))
	s.input = nil
	s.state = StateIdle
	s.idle = true
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.prevCorrectAt = time.Time{}
	s.metrics = Metrics{}
	s.chars = map[rune]*charStat{}
}

func (s *Session) setInputLocked(next []rune) []Event {
	if s.closed || s.state == StateCompleted || s.target.Len() == 0 {
		return nil
	}
	now := s.clk.Now()
	var events []Event

	s.idle = false
	s.idleTask.Schedule(s.cfg.IdleAfter)

	if s.state == StateIdle && len(next) > 0 {
		s.state = StateRunning
		s.startedAt = now
		events = append(events, Event{Kind: EventStarted, Generation: s.gen, Phase: s.phase})
	}
	s.recordChars(next, now)
	s.input = next
	events = append(events, Event{Kind: EventInput, Generation: s.gen, Phase: s.phase})

	if s.state != StateRunning {
		return events
	}
	if s.completeLocked() {
		s.state = StateCompleted
		s.endedAt = now
		s.idleTask.Cancel()
		s.metricsTask.Cancel()
		s.metrics = s.computeLocked(now)
		return append(events, Event{
			Kind:       EventCompleted,
			Generation: s.gen,
			Phase:      s.phase,
			Metrics:    s.metrics,
			Result:     s.resultLocked(now),
		})
	}
	s.metricsTask.Schedule(s.cfg.Debounce)
	return events
}

func (s *Session) completeLocked() bool {
	if len(s.input) < s.target.Len() {
		return false
	}
	if !s.cfg.RequireExactMatch {
		return true
	}
	return slices.Equal(s.input, s.target.runes)
}

// recordChars tallies newly typed positions, the ones past the common prefix
// of the old and new input.
func (s *Session) recordChars(next []rune, now time.Time) {
	i := 0
	for i < len(s.input) && i < len(next) && s.input[i] == next[i] {
		i++
	}
	for ; i < len(next); i++ {
		expected, ok := s.target.At(i)
		if !ok || expected == ' ' || expected == '\n' {
			continue
		}
		entry := s.chars[expected]
		if entry == nil {
			entry = &charStat{}
			s.chars[expected] = entry
		}
		if next[i] != expected {
			entry.incorrect++
			continue
		}
		entry.correct++
		if !s.prevCorrectAt.IsZero() {
			entry.latencySum += now.Sub(s.prevCorrectAt)
			entry.latencyCount++
		}
		s.prevCorrectAt = now
	}
}

func (s *Session) computeLocked(now time.Time) Metrics {
	counts := s.profile.Policy.Count(s.target.runes, s.input)
	var elapsed time.Duration
	switch s.state {
	case StateRunning:
		elapsed = now.Sub(s.startedAt)
	case StateCompleted:
		elapsed = s.endedAt.Sub(s.startedAt)
	}
	return ComputeMetrics(counts, s.profile.Basis, elapsed)
}

func (s *Session) resultLocked(end time.Time) Result {
	counts := s.profile.Policy.Count(s.target.runes, s.input)
	var elapsed time.Duration
	if s.state != StateIdle {
		elapsed = end.Sub(s.startedAt)
	}
	chars := make([]CharStat, 0, len(s.chars))
	for r, entry := range s.chars {
		chars = append(chars, CharStat{
			Char:         r,
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySum:   entry.latencySum,
			LatencyCount: entry.latencyCount,
		})
	}
	slices.SortFunc(chars, func(a, b CharStat) int { return int(a.Char) - int(b.Char) })
	res := Result{
		Mode:       s.cfg.Mode,
		Phase:      s.phase,
		Target:     s.target.String(),
		StartedAt:  s.startedAt,
		EndedAt:    end,
		Counts:     counts,
		TotalChars: s.target.Len(),
		Metrics:    ComputeMetrics(counts, s.profile.Basis, elapsed),
		Chars:      chars,
	}
	if s.state == StateIdle {
		res.EndedAt = time.Time{}
	}
	return res
}

func (s *Session) onIdle(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.closed || s.idle {
		s.mu.Unlock()
		return
	}
	s.idle = true
	ev := Event{Kind: EventIdle, Generation: gen, Phase: s.phase}
	s.mu.Unlock()
	s.emit([]Event{ev})
}

func (s *Session) onMetricsDue(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.closed || s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.metrics = s.computeLocked(s.clk.Now())
	ev := Event{Kind: EventMetrics, Generation: gen, Phase: s.phase, Metrics: s.metrics}
	s.mu.Unlock()
	s.emit([]Event{ev})
}

func (s *Session) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.subMu.Unlock()
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
