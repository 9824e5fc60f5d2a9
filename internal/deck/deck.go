// Package deck loads flashcard decks, quotes and practice texts.
package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrEmptyDeck is returned when a deck has no cards.
var ErrEmptyDeck = errors.New("deck has no cards")

// Card is a flashcard: the question is typed first, then the answer.
type Card struct {
	Question string `toml:"question"`
	Answer   string `toml:"answer"`
}

// Deck is a named list of cards.
type Deck struct {
	Name  string `toml:"name"`
	Cards []Card `toml:"card"`
}

// Load reads a TOML deck:
//
//	name = "Go keywords"
//
//	[[card]]
//	question = "Declares a goroutine"
//	answer = "go"
func Load(path string) (Deck, error) {
	if _, err := os.Stat(path); err != nil {
		return Deck{}, fmt.Errorf("failed to stat deck: %w", err)
	}
	var d Deck
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return Deck{}, fmt.Errorf("failed to decode deck: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Deck{}, fmt.Errorf("invalid deck %s: %w", path, err)
	}
	return d, nil
}

// Validate checks every card has both sides.
func (d Deck) Validate() error {
	if len(d.Cards) == 0 {
		return ErrEmptyDeck
	}
	for i, c := range d.Cards {
		if strings.TrimSpace(c.Question) == "" {
			return fmt.Errorf("card %d: question is empty", i+1)
		}
		if strings.TrimSpace(c.Answer) == "" {
			return fmt.Errorf("card %d: answer is empty", i+1)
		}
	}
	return nil
}

// Shuffled returns a copy of the deck with cards in random order.
func (d Deck) Shuffled(rnd *rand.Rand) Deck {
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)
	rnd.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return Deck{Name: d.Name, Cards: cards}
}
