package engine

import "time"

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// Phase is the flashcard sub-state of a session.
type Phase int

const (
	PhaseSingle Phase = iota
	PhaseQuestion
	PhaseAnswer
)

func (p Phase) String() string {
	switch p {
	case PhaseQuestion:
		return "question"
	case PhaseAnswer:
		return "answer"
	default:
		return "single"
	}
}

// EventKind identifies a session notification.
type EventKind int

const (
	EventStarted EventKind = iota
	EventInput
	EventMetrics
	EventIdle
	EventCompleted
	EventPhase
	EventReset
)

// Event is delivered to subscribers after the session state has changed.
// Generation identifies the attempt that produced it; it changes on Reset.
type Event struct {
	Kind       EventKind
	Generation uint64
	Metrics    Metrics
	Result     Result
	Phase      Phase
}

// CharStat is per-character accuracy and latency for one attempt.
type CharStat struct {
	Char         rune
	Correct      int
	Incorrect    int
	LatencySum   time.Duration
	LatencyCount int
}

// Result summarizes a finished (or interrupted) attempt.
type Result struct {
	Mode       Mode
	Phase      Phase
	Target     string
	StartedAt  time.Time
	EndedAt    time.Time
	Counts     Counts
	TotalChars int
	Metrics    Metrics
	Chars      []CharStat
}

// Duration is the time spent typing.
func (r Result) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// View is a consistent snapshot of a session for rendering.
type View struct {
	Mode           Mode
	Phase          Phase
	State          State
	Idle           bool
	Target         string
	Input          string
	Classification Classification
	Metrics        Metrics
	Generation     uint64
}

// Completed reports whether the attempt has finished.
func (v View) Completed() bool {
	return v.State == StateCompleted
}

// Progress returns the fraction of the target covered by the input, in [0, 1].
func (v View) Progress() float64 {
	total := len(v.Classification.Classes)
	if total == 0 {
		return 0
	}
	typed := min(v.Classification.Cursor, total)
	return float64(typed) / float64(total)
}
