package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keyflash/internal/engine"
	"github.com/verte-zerg/keyflash/internal/flow"
	"github.com/verte-zerg/keyflash/internal/model"
)

func (m *Model) renderHeader() string {
	switch {
	case m.opts.Quiz != nil:
		card, num, phase := m.opts.Quiz.Current()
		title := fmt.Sprintf("Card %d/%d · %s", num, m.opts.Quiz.Len(), phase)
		if phase == engine.PhaseAnswer {
			lines := []string{headerStyle.Render(title), pendingStyle.Render(card.Question)}
			if m.lastItem != nil && m.lastItem.Phase == engine.PhaseAnswer {
				lines = append(lines, feedbackLine(*m.lastItem))
			}
			return lipgloss.JoinVertical(lipgloss.Left, lines...)
		}
		return headerStyle.Render(title)
	case m.opts.Countdown != nil:
		remaining := m.opts.Countdown.Duration().String()
		if m.timerOn {
			remaining = m.timer.View()
		}
		return headerStyle.Render(fmt.Sprintf("%s · text %d", remaining, max(m.item, 1)))
	case m.view.Mode == engine.ModeCode:
		line, col := engine.NewText(m.view.Target).Position(m.view.Classification.Cursor)
		return headerStyle.Render(fmt.Sprintf("Ln %d, Col %d", line+1, col+1))
	}
	return ""
}

func feedbackLine(res engine.Result) string {
	style := correctStyle
	if res.Counts.Incorrect > 0 {
		style = incorrectStyle
	}
	return style.Render(fmt.Sprintf("%.1f%% · %.0f WPM", res.Metrics.Accuracy, res.Metrics.WPM))
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.summary == nil && len(m.view.Classification.Classes) > 0 {
		segments = append(segments, fmt.Sprintf("Progress %d%%", int(m.view.Progress()*100)))
		if m.view.State == engine.StateRunning {
			segments = append(segments, fmt.Sprintf("%.0f WPM", m.view.Metrics.WPM))
		}
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc))
	}
	if m.allCount > 0 {
		n := float64(m.allCount)
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPMSum/n, m.allAccSum/n))
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	return lipgloss.JoinVertical(lipgloss.Center, footer, m.help.View(m.keys))
}

func (m *Model) renderResults(s flow.Summary) string {
	title := "Results"
	if s.Mode == engine.ModeFlashcard {
		title = fmt.Sprintf("Deck finished · %d cards", s.Items)
	} else if s.Items > 1 {
		title = fmt.Sprintf("Results · %d texts", s.Items)
	}
	rows := []string{
		headerStyle.Render(title),
		"",
		fmt.Sprintf("WPM       %.0f", s.Metrics.WPM),
		fmt.Sprintf("Raw       %.0f", s.Metrics.RawWPM),
		fmt.Sprintf("Net       %.0f", s.Metrics.NetWPM),
		fmt.Sprintf("Accuracy  %.1f%%", s.Metrics.Accuracy),
		fmt.Sprintf("Chars     %d correct · %d incorrect", s.Counts.Correct, s.Counts.Incorrect),
		fmt.Sprintf("Time      %s", s.Metrics.Elapsed.Round(100*time.Millisecond)),
	}
	if m.err != nil {
		rows = append(rows, "", errorStyle.Render(m.err.Error()))
	}
	rows = append(rows, "", footerStyle.Render("enter again · ctrl+n next · esc quit"))
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	sessions, err := m.store.ListSessions(context.Background(), model.StatsConfig{Mode: m.session.Mode().String()})
	if err != nil {
		m.logger.Error("failed to load session stats", "err", err)
		return
	}
	for _, s := range sessions {
		m.recordFooter(s.WPM, s.Accuracy)
	}
}

func (m *Model) recordFooter(wpm, acc float64) {
	m.lastWPM = wpm
	m.lastAcc = acc
	m.hasLast = true
	m.allWPMSum += wpm
	m.allAccSum += acc
	m.allCount++
}

func (m *Model) persist(s flow.Summary) {
	if s.Counts.Typed == 0 {
		return
	}
	stats, chars := toSessionStats(s, m.opts.Practice, m.opts.Source)
	m.recordFooter(stats.WPM, stats.Accuracy)
	if m.store == nil {
		return
	}
	id, sessionUUID, err := m.store.InsertSession(context.Background(), stats, chars)
	if err != nil {
		m.logger.Error("failed to save session", "err", err)
		return
	}
	m.logger.Info("session saved",
		"id", id,
		"uuid", sessionUUID,
		"mode", stats.Mode,
		"items", stats.Items,
		"wpm", stats.WPM,
		"accuracy", stats.Accuracy,
	)
}

// toSessionStats converts a run summary into store rows. Word-generation
// settings are only recorded for generated texts.
func toSessionStats(s flow.Summary, practice model.Config, source string) (model.SessionStats, []model.CharStats) {
	stats := model.SessionStats{
		Mode:       s.Mode.String(),
		StartedAt:  s.StartedAt,
		EndedAt:    s.EndedAt,
		Source:     source,
		Items:      s.Items,
		DurationMs: s.Metrics.Elapsed.Milliseconds(),
		WPM:        s.Metrics.WPM,
		Accuracy:   s.Metrics.Accuracy,
	}
	if s.Mode == engine.ModeWords {
		stats.Lang = practice.Lang
		stats.Words = practice.Words
		stats.CapsPct = practice.CapsPct
		stats.PunctPct = practice.PunctPct
		stats.PunctSet = practice.PunctSet
	}
	merged := s.Chars()
	chars := make([]model.CharStats, 0, len(merged))
	for _, c := range merged {
		stats.CorrectNonSpace += c.Correct
		stats.IncorrectNonSpace += c.Incorrect
		chars = append(chars, model.CharStats{
			Char:         string(c.Char),
			Correct:      c.Correct,
			Incorrect:    c.Incorrect,
			LatencySumMs: c.LatencySum.Milliseconds(),
			LatencyCount: int64(c.LatencyCount),
		})
	}
	return stats, chars
}
