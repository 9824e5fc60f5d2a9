// Package engine evaluates typing sessions: it classifies typed input against a
// target text, derives live metrics and drives the session lifecycle.
package engine

import (
	"fmt"
	"strings"
)

// Mode identifies a typing surface.
type Mode int

const (
	ModeWords Mode = iota
	ModeQuote
	ModeCode
	ModeFlashcard
	ModeText
)

var modeNames = map[Mode]string{
	ModeWords:     "words",
	ModeQuote:     "quote",
	ModeCode:      "code",
	ModeFlashcard: "flashcard",
	ModeText:      "text",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode resolves a mode name.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range modeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// WPMBasis selects which character count feeds the WPM formula.
type WPMBasis int

const (
	BasisCorrect WPMBasis = iota
	BasisTyped
)

// Profile is the fixed evaluation behaviour of a mode.
type Profile struct {
	Policy CountingPolicy
	Keys   KeyHandler
	Basis  WPMBasis
}

// ProfileFor returns the evaluation profile for mode. Word and quote drills
// count with StrictPrefix; code, flashcards and saved texts use FullScan.
func ProfileFor(mode Mode) Profile {
	switch mode {
	case ModeWords, ModeQuote:
		return Profile{Policy: StrictPrefix, Keys: PlainKeys, Basis: BasisCorrect}
	case ModeCode:
		return Profile{Policy: FullScan, Keys: CodeKeys, Basis: BasisTyped}
	default:
		return Profile{Policy: FullScan, Keys: PlainKeys, Basis: BasisTyped}
	}
}
