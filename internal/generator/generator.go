// Package generator builds typing text sequences.
package generator

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ErrNoWords is returned when a source has an empty word list.
var ErrNoWords = errors.New("word list is empty")

// Generator produces randomized typing text. It is not safe for concurrent
// use; WordSource serializes access.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Options shape generated words.
type Options struct {
	Count    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generate selects words uniformly and applies caps/punctuation rules.
func (g *Generator) Generate(words []string, opts Options) []string {
	return g.generate(words, opts, func() int { return g.rnd.Intn(len(words)) })
}

// GenerateWeighted selects words with a bias toward weak characters: each
// weak rune in a word adds factor to its weight.
func (g *Generator) GenerateWeighted(words []string, opts Options, weakSet map[rune]struct{}, factor float64) []string {
	cumulative := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		weakCount := 0
		for _, r := range word {
			if _, ok := weakSet[r]; ok {
				weakCount++
			}
		}
		total += 1.0 + float64(weakCount)*factor
		cumulative[i] = total
	}
	return g.generate(words, opts, func() int {
		r := g.rnd.Float64() * total
		for j, acc := range cumulative {
			if r <= acc {
				return j
			}
		}
		return len(words) - 1
	})
}

func (g *Generator) generate(words []string, opts Options, pick func() int) []string {
	if len(words) == 0 || opts.Count <= 0 {
		return nil
	}
	result := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		word := words[pick()]
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
		result = append(result, word)
	}
	return result
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}

// WordSource yields space-joined random word texts. When WeakChars returns a
// non-empty set, words are weighted toward it.
type WordSource struct {
	Words      []string
	Options    Options
	WeakFactor float64
	WeakChars  func() map[rune]struct{}

	mu  sync.Mutex
	gen *Generator
}

// NewWordSource returns a source drawing from words with gen.
func NewWordSource(gen *Generator, words []string, opts Options) *WordSource {
	return &WordSource{Words: words, Options: opts, gen: gen}
}

// Next returns the next text.
func (s *WordSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.Words) == 0 {
		return "", ErrNoWords
	}
	var weak map[rune]struct{}
	if s.WeakChars != nil {
		weak = s.WeakChars()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var words []string
	if len(weak) > 0 {
		words = s.gen.GenerateWeighted(s.Words, s.Options, weak, s.WeakFactor)
	} else {
		words = s.gen.Generate(s.Words, s.Options)
	}
	return strings.Join(words, " "), nil
}
