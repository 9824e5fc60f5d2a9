package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keyflash/internal/model"
	"github.com/verte-zerg/keyflash/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "keyflash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		stats := model.SessionStats{
			Mode:              "words",
			StartedAt:         start,
			EndedAt:           end,
			Lang:              "en",
			Items:             1,
			Words:             10,
			PunctSet:          ".,?!",
			CorrectNonSpace:   10,
			IncorrectNonSpace: 1,
			DurationMs:        end.Sub(start).Milliseconds(),
			WPM:               float64(4 + i),
			Accuracy:          90.9,
		}
		charStats := []model.CharStats{
			{Char: "a", Correct: 5, Incorrect: 0},
			{Char: "b", Correct: 4, Incorrect: 1},
		}
		id, _, err := st.InsertSession(ctx, stats, charStats)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Mode:        "words",
		Lang:        "en",
		Last:        2,
		CurveWindow: 2,
		Chars:       "a,b",
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 2 {
		t.Fatalf("expected 2 window session ids, got %d", len(report.WindowSessionIDs))
	}
	if len(report.CharAggsAll) == 0 {
		t.Fatalf("expected char aggregates for all sessions")
	}
	if len(report.CharAggsWindow) == 0 {
		t.Fatalf("expected char aggregates for window sessions")
	}
	if strings.Join(report.CurveChars, "") != "ab" {
		t.Fatalf("unexpected curve chars: %v", report.CurveChars)
	}
	if report.CharsPerSession[ids[2]]["b"].Incorrect != 1 {
		t.Fatalf("expected per-session char stats, got %+v", report.CharsPerSession)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 2, 80); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Learning Curves", "Per-Character (Windowed)", "Char a"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestBuildReportDefaultsCurveChars(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "keyflash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	_, _, err = st.InsertSession(ctx, model.SessionStats{Mode: "code", EndedAt: time.Unix(60, 0)}, []model.CharStats{
		{Char: "{", Correct: 9},
		{Char: "x", Correct: 1},
	})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	report, err := BuildReport(ctx, st, model.StatsConfig{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.CurveChars) != 2 || report.CurveChars[0] != "{" {
		t.Fatalf("expected most frequent chars first, got %v", report.CurveChars)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions found." {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderSummaryModes(t *testing.T) {
	sessions := []model.SessionAggregate{
		{Mode: "words", Correct: 250, DurationMs: 60000, WPM: 50, Accuracy: 100},
		{Mode: "code", Correct: 150, Incorrect: 50, DurationMs: 60000, WPM: 40, Accuracy: 75},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Typing time: 2m0s", "Avg WPM: 45.00", "Best WPM: 50.00", "Avg CPM: 200.00", "Avg Accuracy: 87.50%", "Mode", "code"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestParseChars(t *testing.T) {
	got := ParseChars("a,,b,a,")
	if strings.Join(got, "|") != "a|b" {
		t.Fatalf("unexpected chars: %v", got)
	}
}
