package flow

import (
	"context"
	"sync"
	"time"

	"github.com/verte-zerg/keyflash/internal/clock"
	"github.com/verte-zerg/keyflash/internal/deck"
	"github.com/verte-zerg/keyflash/internal/engine"
)

const (
	// DefaultQuestionDelay separates a typed question from its answer.
	DefaultQuestionDelay = 500 * time.Millisecond
	// DefaultCardDelay leaves the answer feedback visible before the next card.
	DefaultCardDelay = 5 * time.Second
)

// QuizConfig sets the pauses between flashcard phases.
type QuizConfig struct {
	QuestionDelay time.Duration
	CardDelay     time.Duration
}

// Quiz walks a deck: each card is typed as a question, then as an answer.
type Quiz struct {
	session *engine.Session
	cards   []deck.Card
	clk     clock.Clock
	cfg     QuizConfig
	subs    listeners

	mu      sync.Mutex
	gen     uint64
	active  bool
	index   int
	phase   engine.Phase
	results []engine.Result
	pending *clock.Task
}

// NewQuiz returns a controller over cards.
func NewQuiz(session *engine.Session, cards []deck.Card, clk clock.Clock, cfg QuizConfig) *Quiz {
	if cfg.QuestionDelay <= 0 {
		cfg.QuestionDelay = DefaultQuestionDelay
	}
	if cfg.CardDelay <= 0 {
		cfg.CardDelay = DefaultCardDelay
	}
	q := &Quiz{session: session, cards: cards, clk: clk, cfg: cfg}
	session.Subscribe(q.onSession)
	return q
}

// Session returns the driven session.
func (q *Quiz) Session() *engine.Session {
	return q.session
}

// Subscribe registers fn for flow events.
func (q *Quiz) Subscribe(fn func(Event)) func() {
	return q.subs.add(fn)
}

// Current returns the active card, its 1-based number and the phase.
func (q *Quiz) Current() (deck.Card, int, engine.Phase) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.cards) == 0 {
		return deck.Card{}, 0, q.phase
	}
	return q.cards[q.index], q.index + 1, q.phase
}

// Len returns the number of cards.
func (q *Quiz) Len() int {
	return len(q.cards)
}

// Start begins at the first card.
func (q *Quiz) Start(ctx context.Context) error {
	return q.Restart(ctx)
}

// Restart goes back to the first card, cancelling any pending advance.
func (q *Quiz) Restart(_ context.Context) error {
	if len(q.cards) == 0 {
		return deck.ErrEmptyDeck
	}
	q.mu.Lock()
	q.cancelLocked()
	q.active = true
	q.index = 0
	q.phase = engine.PhaseQuestion
	q.results = nil
	card := q.cards[0]
	q.mu.Unlock()
	q.load(card.Question, engine.PhaseQuestion)
	q.subs.emit(Event{Kind: EventItemStarted, Item: 1, Phase: engine.PhaseQuestion})
	return nil
}

// Stop cancels any pending advance and ignores further completions.
func (q *Quiz) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelLocked()
	q.active = false
}

func (q *Quiz) cancelLocked() {
	q.gen++
	if q.pending != nil {
		q.pending.Cancel()
		q.pending = nil
	}
}

func (q *Quiz) scheduleLocked(d time.Duration, fn func(gen uint64)) {
	if q.pending != nil {
		q.pending.Cancel()
	}
	gen := q.gen
	q.pending = clock.NewTask(q.clk, func() { fn(gen) })
	q.pending.Schedule(d)
}

func (q *Quiz) load(text string, phase engine.Phase) {
	q.session.Reset(text)
	q.session.SetPhase(phase)
}

func (q *Quiz) onSession(ev engine.Event) {
	if ev.Kind != engine.EventCompleted {
		return
	}
	q.mu.Lock()
	if !q.active || ev.Phase != q.phase {
		q.mu.Unlock()
		return
	}
	q.results = append(q.results, ev.Result)
	item := q.index + 1
	if q.phase == engine.PhaseQuestion {
		q.scheduleLocked(q.cfg.QuestionDelay, q.showAnswer)
		q.mu.Unlock()
		return
	}
	if q.index == len(q.cards)-1 {
		q.active = false
		summary := Summarize(engine.ModeFlashcard, len(q.cards), q.results)
		q.mu.Unlock()
		q.subs.emit(
			Event{Kind: EventItemDone, Item: item, Phase: engine.PhaseAnswer, Result: ev.Result},
			Event{Kind: EventFinished, Summary: summary},
		)
		return
	}
	q.scheduleLocked(q.cfg.CardDelay, q.nextCard)
	q.mu.Unlock()
	q.subs.emit(Event{Kind: EventItemDone, Item: item, Phase: engine.PhaseAnswer, Result: ev.Result})
}

func (q *Quiz) showAnswer(gen uint64) {
	q.mu.Lock()
	if gen != q.gen || !q.active || q.phase != engine.PhaseQuestion {
		q.mu.Unlock()
		return
	}
	q.phase = engine.PhaseAnswer
	item := q.index + 1
	card := q.cards[q.index]
	q.mu.Unlock()
	q.load(card.Answer, engine.PhaseAnswer)
	q.subs.emit(Event{Kind: EventPhaseChanged, Item: item, Phase: engine.PhaseAnswer})
}

func (q *Quiz) nextCard(gen uint64) {
	q.mu.Lock()
	if gen != q.gen || !q.active || q.phase != engine.PhaseAnswer || q.index+1 >= len(q.cards) {
		q.mu.Unlock()
		return
	}
	q.index++
	q.phase = engine.PhaseQuestion
	item := q.index + 1
	card := q.cards[q.index]
	q.mu.Unlock()
	q.load(card.Question, engine.PhaseQuestion)
	q.subs.emit(
		Event{Kind: EventPhaseChanged, Item: item, Phase: engine.PhaseQuestion},
		Event{Kind: EventItemStarted, Item: item, Phase: engine.PhaseQuestion},
	)
}
