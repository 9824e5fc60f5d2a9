// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings for generated word texts.
type Config struct {
	Lang       string  `flag:"lang" validate:"required"`
	Words      int     `flag:"words" validate:"gt=0"`
	CapsPct    float64 `flag:"caps" validate:"gte=0,lte=1"`
	PunctPct   float64 `flag:"punct" validate:"gte=0,lte=1"`
	PunctSet   string  `flag:"punct-set" validate:"required"`
	FocusWeak  bool    `flag:"focus-weak"`
	WeakTop    int     `flag:"weak-top" validate:"gte=0"`
	WeakFactor float64 `flag:"weak-factor" validate:"gte=0"`
	WeakWindow int     `flag:"weak-window" validate:"gte=0"`
}

// SessionConfig defines timing and completion settings shared by all modes.
// Millisecond fields keep their flag units so validation messages read
// naturally.
type SessionConfig struct {
	DurationSec      int    `flag:"duration" validate:"gte=0"`
	IdleMs           int    `flag:"idle-ms" validate:"gt=0"`
	DebounceMs       int    `flag:"debounce-ms" validate:"gt=0"`
	TabWidth         int    `flag:"tab-width" validate:"gt=0,lte=16"`
	StrictCompletion bool   `flag:"strict-completion"`
	QuestionDelayMs  int    `flag:"question-delay-ms" validate:"gt=0"`
	CardDelayMs      int    `flag:"card-delay-ms" validate:"gt=0"`
	LogLevel         string `flag:"log-level" validate:"oneof=debug info warn warning error"`
	LogFormat        string `flag:"log-format" validate:"oneof=text json"`
}

// Duration returns the timed-run limit; zero means untimed.
func (c SessionConfig) Duration() time.Duration {
	return time.Duration(c.DurationSec) * time.Second
}

// IdleAfter returns the idle threshold.
func (c SessionConfig) IdleAfter() time.Duration {
	return time.Duration(c.IdleMs) * time.Millisecond
}

// Debounce returns the metrics debounce delay.
func (c SessionConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// QuestionDelay returns the pause between a flashcard question and its answer.
func (c SessionConfig) QuestionDelay() time.Duration {
	return time.Duration(c.QuestionDelayMs) * time.Millisecond
}

// CardDelay returns the pause before the next flashcard.
func (c SessionConfig) CardDelay() time.Duration {
	return time.Duration(c.CardDelayMs) * time.Millisecond
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
	Chars       string
}

// SessionStats captures a finished run.
type SessionStats struct {
	UUID              string
	Mode              string
	StartedAt         time.Time
	EndedAt           time.Time
	Lang              string
	Source            string
	Items             int
	Words             int
	CapsPct           float64
	PunctPct          float64
	PunctSet          string
	CorrectNonSpace   int
	IncorrectNonSpace int
	DurationMs        int64
	WPM               float64
	Accuracy          float64
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// Aggregated per-char stats for selection or reporting.

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	Mode       string
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	DurationMs int64
	WPM        float64
	Accuracy   float64
}
