package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/keyflash/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "keyflash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insert(t *testing.T, st *Store, mode, lang string, endedAt time.Time, chars []model.CharStats) int64 {
	t.Helper()
	stats := model.SessionStats{
		Mode:              mode,
		StartedAt:         endedAt.Add(-30 * time.Second),
		EndedAt:           endedAt,
		Lang:              lang,
		Items:             1,
		CorrectNonSpace:   20,
		IncorrectNonSpace: 2,
		DurationMs:        30000,
		WPM:               8,
		Accuracy:          90.9,
	}
	id, _, err := st.InsertSession(context.Background(), stats, chars)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return id
}

func TestInsertSessionGeneratesUUID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, generated, err := st.InsertSession(ctx, model.SessionStats{Mode: "words", EndedAt: time.Unix(10, 0)}, nil)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := uuid.Parse(generated); err != nil {
		t.Fatalf("expected valid uuid, got %q: %v", generated, err)
	}

	fixed := uuid.NewString()
	_, kept, err := st.InsertSession(ctx, model.SessionStats{UUID: fixed, Mode: "words", EndedAt: time.Unix(20, 0)}, nil)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if kept != fixed {
		t.Fatalf("expected uuid %s, got %s", fixed, kept)
	}

	if _, _, err := st.InsertSession(ctx, model.SessionStats{UUID: fixed, Mode: "words"}, nil); err == nil {
		t.Fatalf("expected duplicate uuid to be rejected")
	}
}

func TestListSessionsFilters(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	insert(t, st, "words", "en", base, nil)
	quoteID := insert(t, st, "quote", "en", base.Add(time.Minute), nil)
	insert(t, st, "words", "de", base.Add(2*time.Minute), nil)
	lastWords := insert(t, st, "words", "en", base.Add(3*time.Minute), nil)

	ctx := context.Background()
	quotes, err := st.ListSessions(ctx, model.StatsConfig{Mode: "quote"})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(quotes) != 1 || quotes[0].SessionID != quoteID || quotes[0].Mode != "quote" {
		t.Fatalf("unexpected quote sessions: %+v", quotes)
	}
	if quotes[0].WPM != 8 || quotes[0].Accuracy != 90.9 {
		t.Fatalf("expected stored metrics, got %+v", quotes[0])
	}

	english, err := st.ListSessions(ctx, model.StatsConfig{Mode: "words", Lang: "en"})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(english) != 2 {
		t.Fatalf("expected 2 english word sessions, got %d", len(english))
	}

	since := base.Add(90 * time.Second)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 sessions since %v, got %d", since, len(recent))
	}

	last, err := st.ListSessions(ctx, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(last) != 2 || last[1].SessionID != lastWords {
		t.Fatalf("expected last two sessions oldest first, got %+v", last)
	}
	if !last[0].EndedAt.Before(last[1].EndedAt) {
		t.Fatalf("expected ascending order, got %+v", last)
	}
}

func TestCharAggregates(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first := insert(t, st, "words", "en", base, []model.CharStats{
		{Char: "a", Correct: 5, Incorrect: 1, LatencySumMs: 500, LatencyCount: 4},
		{Char: "b", Correct: 2},
	})
	second := insert(t, st, "words", "en", base.Add(time.Minute), []model.CharStats{
		{Char: "a", Correct: 3, Incorrect: 3, LatencySumMs: 300, LatencyCount: 2},
	})
	insert(t, st, "code", "en", base.Add(2*time.Minute), []model.CharStats{
		{Char: "a", Incorrect: 50},
	})

	ctx := context.Background()
	aggs, err := st.ListCharAggregatesForSessions(ctx, []int64{first, second})
	if err != nil {
		t.Fatalf("list aggregates: %v", err)
	}
	byChar := map[string]model.CharAggregate{}
	for _, agg := range aggs {
		byChar[agg.Char] = agg
	}
	if a := byChar["a"]; a.Correct != 8 || a.Incorrect != 4 || a.LatencySumMs != 800 || a.LatencyCount != 6 {
		t.Fatalf("unexpected aggregate for a: %+v", a)
	}

	weak, err := st.GetWeakChars(ctx, 10, "en")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	for _, agg := range weak {
		if agg.Char == "a" && agg.Incorrect != 4 {
			t.Fatalf("weak chars must only use word sessions, got %+v", agg)
		}
	}

	perSession, err := st.ListCharStatsForSessions(ctx, []int64{first, second}, []string{"a"})
	if err != nil {
		t.Fatalf("per-session stats: %v", err)
	}
	if perSession[second]["a"].Incorrect != 3 {
		t.Fatalf("unexpected per-session stats: %+v", perSession)
	}
	if _, ok := perSession[first]["b"]; ok {
		t.Fatalf("expected only requested chars")
	}
}
