package deck

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrNoQuotes is returned when a quote file holds no quotes.
var ErrNoQuotes = errors.New("no quotes found")

var defaultQuotes = []string{
	"Simplicity is prerequisite for reliability.",
	"Programs must be written for people to read, and only incidentally for machines to execute.",
	"The purpose of abstraction is not to be vague, but to create a new semantic level in which one can be absolutely precise.",
	"Premature optimization is the root of all evil.",
	"Make it work, make it right, make it fast.",
	"Clear is better than clever.",
	"A little copying is better than a little dependency.",
	"Errors are values.",
	"Don't communicate by sharing memory, share memory by communicating.",
	"The bigger the interface, the weaker the abstraction.",
}

// DefaultQuotes returns the built-in quotes.
func DefaultQuotes() []string {
	return append([]string(nil), defaultQuotes...)
}

// LoadText reads a whole file as one practice text.
func LoadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("text file %s is empty", path)
	}
	return text, nil
}

// LoadQuotes reads quotes separated by blank lines. Lines inside a quote are
// joined with single spaces.
func LoadQuotes(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quotes: %w", err)
	}
	return ParseQuotes(string(data))
}

// ParseQuotes splits raw text into quotes.
func ParseQuotes(raw string) ([]string, error) {
	var quotes []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			quotes = append(quotes, strings.Join(current, " "))
			current = nil
		}
	}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, strings.Join(strings.Fields(line), " "))
	}
	flush()
	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}
	return quotes, nil
}

// QuoteSource hands out random quotes, never the same one twice in a row.
type QuoteSource struct {
	mu     sync.Mutex
	quotes []string
	rnd    *rand.Rand
	last   int
}

// NewQuoteSource returns a source over quotes.
func NewQuoteSource(quotes []string) *QuoteSource {
	return &QuoteSource{
		quotes: quotes,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		last:   -1,
	}
}

// Next returns a quote.
func (q *QuoteSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.quotes) == 0 {
		return "", ErrNoQuotes
	}
	idx := q.rnd.Intn(len(q.quotes))
	if idx == q.last && len(q.quotes) > 1 {
		idx = (idx + 1) % len(q.quotes)
	}
	q.last = idx
	return q.quotes[idx], nil
}
