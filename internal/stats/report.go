package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/keyflash/internal/model"
	"github.com/verte-zerg/keyflash/internal/store"
)

const defaultCurveChars = 5

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	CharAggsAll      []model.CharAggregate
	CharAggsWindow   []model.CharAggregate
	CurveChars       []string
	CharsPerSession  map[int64]map[string]model.CharAggregate
}

// BuildReport loads and prepares data for stats rendering. Without an explicit
// character list, curves cover the most frequent characters.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	charAggsAll, err := st.ListCharAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate chars: %w", err)
	}
	charAggsWindow, err := st.ListCharAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate window chars: %w", err)
	}

	curveChars := ParseChars(cfg.Chars)
	if len(curveChars) == 0 {
		curveChars = TopCharsByFrequency(charAggsAll, defaultCurveChars)
	}
	perSession, err := st.ListCharStatsForSessions(ctx, allIDs, curveChars)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load char curves: %w", err)
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		CharAggsAll:      charAggsAll,
		CharAggsWindow:   charAggsWindow,
		CurveChars:       curveChars,
		CharsPerSession:  perSession,
	}, nil
}

// Render writes the full report: summary, curves, then the per-character
// table and curves. width is the terminal width, or 0 when unknown.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	curveWidth := CurveWidth(width)
	if err := RenderCurves(w, r.Sessions, window, curveWidth); err != nil {
		return err
	}
	if err := RenderCharTable(w, r.CharAggsWindow); err != nil {
		return err
	}
	return RenderCharCurves(w, r.Sessions, r.CharsPerSession, r.CurveChars, window, curveWidth)
}

// ParseChars splits a comma-separated character list. A lone "," or a
// trailing empty entry are ignored.
func ParseChars(raw string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
