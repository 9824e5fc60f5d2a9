package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/help"

	"github.com/verte-zerg/keyflash/internal/engine"
	"github.com/verte-zerg/keyflash/internal/flow"
	"github.com/verte-zerg/keyflash/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		keys: defaultKeyMap(),
		help: help.New(),
		view: engine.View{
			State:          engine.StateRunning,
			Classification: engine.Classify([]rune("abcd"), []rune("ab")),
			Metrics:        engine.Metrics{WPM: 41},
		},
		hasLast:   true,
		lastWPM:   72.4,
		lastAcc:   97.8,
		allWPMSum: 136.2,
		allAccSum: 193.8,
		allCount:  2,
	}
	out := m.renderFooter()
	for _, want := range []string{"Progress 50%", "41 WPM", "Last 72.4 WPM", "97.8%", "All-time 68.1 WPM", "96.9%", "retry"} {
		if !strings.Contains(out, want) {
			t.Fatalf("footer missing %q: %s", want, out)
		}
	}
}

func TestToSessionStats(t *testing.T) {
	start := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	summary := flow.Summarize(engine.ModeWords, 2, []engine.Result{
		{
			StartedAt: start,
			EndedAt:   start.Add(30 * time.Second),
			Counts:    engine.Counts{Correct: 20, Incorrect: 2, Typed: 22},
			Chars: []engine.CharStat{
				{Char: 'a', Correct: 10, Incorrect: 1, LatencySum: 1500 * time.Millisecond, LatencyCount: 9},
			},
		},
		{
			StartedAt: start.Add(31 * time.Second),
			EndedAt:   start.Add(61 * time.Second),
			Counts:    engine.Counts{Correct: 30, Typed: 30},
			Chars: []engine.CharStat{
				{Char: 'a', Correct: 4},
				{Char: 'b', Correct: 6, Incorrect: 1},
			},
		},
	})
	practice := model.Config{Lang: "en", Words: 25, PunctSet: ".,"}
	stats, chars := toSessionStats(summary, practice, "")

	if stats.Mode != "words" || stats.Lang != "en" || stats.Words != 25 || stats.Items != 2 {
		t.Fatalf("unexpected session stats: %+v", stats)
	}
	if stats.DurationMs != 60000 {
		t.Fatalf("expected typing time without the gap, got %d", stats.DurationMs)
	}
	if stats.CorrectNonSpace != 20 || stats.IncorrectNonSpace != 2 {
		t.Fatalf("expected per-char totals, got %d/%d", stats.CorrectNonSpace, stats.IncorrectNonSpace)
	}
	if stats.WPM != summary.Metrics.WPM || stats.Accuracy != summary.Metrics.Accuracy {
		t.Fatalf("expected summary metrics, got %+v", stats)
	}
	if len(chars) != 2 || chars[0].Char != "a" || chars[0].Correct != 14 || chars[0].LatencySumMs != 1500 {
		t.Fatalf("unexpected char stats: %+v", chars)
	}

	quote := flow.Summarize(engine.ModeQuote, 1, nil)
	stats, _ = toSessionStats(quote, practice, "quotes.txt")
	if stats.Lang != "" || stats.Words != 0 || stats.Source != "quotes.txt" {
		t.Fatalf("expected no word settings for quotes, got %+v", stats)
	}
}

func TestRenderResults(t *testing.T) {
	m := &Model{}
	out := m.renderResults(flow.Summary{
		Mode:    engine.ModeFlashcard,
		Items:   3,
		Counts:  engine.Counts{Correct: 40, Incorrect: 2},
		Metrics: engine.Metrics{WPM: 38, Accuracy: 95.2, Elapsed: 12 * time.Second},
	})
	for _, want := range []string{"Deck finished · 3 cards", "WPM       38", "95.2%", "40 correct · 2 incorrect", "12s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("results missing %q:\n%s", want, out)
		}
	}
}
