// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/keyflash/internal/engine"
	"github.com/verte-zerg/keyflash/internal/model"
)

const (
	sparkChars        = "▁▂▃▄▅▆▇█"
	curveLabelWidth   = 10
	curveValueWidth   = 10
	defaultCurveWidth = 60
)

// SessionMetrics recomputes metrics from stored counts, using correct
// characters as the WPM basis.
func SessionMetrics(correct, incorrect int, durationMs int64) engine.Metrics {
	counts := engine.Counts{Correct: correct, Incorrect: incorrect, Typed: correct + incorrect}
	return engine.ComputeMetrics(counts, engine.BasisCorrect, time.Duration(durationMs)*time.Millisecond)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders values as a single line of block characters, keeping the
// most recent width values when width is positive.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	blocks := []rune(sparkChars)
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal-minVal < 1e-9 {
		return strings.Repeat(string(blocks[len(blocks)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(blocks)-1)))
		b.WriteRune(blocks[max(0, min(idx, len(blocks)-1))])
	}
	return b.String()
}

// CurveWidth returns how many sparkline cells fit in a terminal of
// totalWidth columns between the series label and its latest value.
func CurveWidth(totalWidth int) int {
	if totalWidth <= 0 {
		return defaultCurveWidth
	}
	return max(1, totalWidth-curveLabelWidth-curveValueWidth)
}

// TerminalWidth returns the width of f when it is a terminal, else 0.
func TerminalWidth(f *os.File) int {
	if !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// RenderSummary prints a summary of sessions with a per-mode breakdown.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	type modeTotals struct {
		count  int
		wpm    float64
		acc    float64
		typing time.Duration
	}
	byMode := map[string]*modeTotals{}
	var totalWPM, totalCPM, totalAcc float64
	var typing time.Duration
	bestWPM := 0.0
	for _, s := range sessions {
		m := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalWPM += s.WPM
		totalCPM += m.CPM
		totalAcc += s.Accuracy
		typing += m.Elapsed
		bestWPM = max(bestWPM, s.WPM)
		entry := byMode[s.Mode]
		if entry == nil {
			entry = &modeTotals{}
			byMode[s.Mode] = entry
		}
		entry.count++
		entry.wpm += s.WPM
		entry.acc += s.Accuracy
		entry.typing += m.Elapsed
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Typing time: %s", typing.Round(time.Second)),
		fmt.Sprintf("Avg WPM: %.2f", totalWPM/count),
		fmt.Sprintf("Best WPM: %.2f", bestWPM),
		fmt.Sprintf("Avg CPM: %.2f", totalCPM/count),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(byMode) > 1 {
		modes := make([]string, 0, len(byMode))
		for mode := range byMode {
			modes = append(modes, mode)
		}
		sort.Strings(modes)
		rows := make([][]string, 0, len(modes))
		for _, mode := range modes {
			t := byMode[mode]
			n := float64(t.count)
			rows = append(rows, []string{
				mode,
				fmt.Sprintf("%d", t.count),
				fmt.Sprintf("%.2f", t.wpm/n),
				fmt.Sprintf("%.2f%%", t.acc/n),
				t.typing.Round(time.Second).String(),
			})
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
		if err := writeTable(w, []string{"Mode", "Sessions", "Avg WPM", "Avg Accuracy", "Time"}, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints WPM and accuracy sparklines of width cells.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		wpms[i] = s.WPM
		accs[i] = s.Accuracy
	}
	if _, err := fmt.Fprintln(w, "Learning Curves"); err != nil {
		return err
	}
	return writeCurves(w, []curve{
		{name: "WPM", values: MovingAverage(wpms, window)},
		{name: "Accuracy", values: MovingAverage(accs, window)},
	}, width)
}

// RenderCharTable prints per-character aggregates, weakest first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	type row struct {
		char      string
		acc       float64
		latency   float64
		correct   int
		incorrect int
	}
	rows := make([]row, 0, len(aggs))
	for _, agg := range aggs {
		charLabel := agg.Char
		switch charLabel {
		case " ":
			charLabel = "<space>"
		case "\t":
			charLabel = "<tab>"
		}
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, row{
			char:      charLabel,
			acc:       accuracy(agg),
			latency:   lat,
			correct:   agg.Correct,
			incorrect: agg.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].acc == rows[j].acc {
			return rows[i].char < rows[j].char
		}
		return rows[i].acc < rows[j].acc
	})

	if _, err := fmt.Fprintln(w, "Per-Character (Windowed)"); err != nil {
		return err
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.char,
			fmt.Sprintf("%.2f%%", r.acc*100),
			fmt.Sprintf("%.1f", r.latency),
			fmt.Sprintf("%d", r.correct),
			fmt.Sprintf("%d", r.incorrect),
		})
	}
	headers := []string{"Char", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	if err := writeTable(w, headers, tableRows, map[int]bool{1: true, 2: true, 3: true, 4: true}); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCharCurves prints per-character accuracy and latency sparklines.
func RenderCharCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.CharAggregate, chars []string, window, width int) error {
	if len(chars) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Character Curves"); err != nil {
		return err
	}
	for _, ch := range chars {
		accSeries := make([]float64, len(sessions))
		latSeries := make([]float64, len(sessions))
		for i, s := range sessions {
			agg, ok := perSession[s.SessionID][ch]
			if !ok {
				continue
			}
			if agg.Correct+agg.Incorrect > 0 {
				accSeries[i] = accuracy(agg) * 100
			}
			if agg.LatencyCount > 0 {
				latSeries[i] = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
			}
		}
		if _, err := fmt.Fprintf(w, "Char %s\n", ch); err != nil {
			return err
		}
		if err := writeCurves(w, []curve{
			{name: "Accuracy", values: MovingAverage(accSeries, window)},
			{name: "Latency", values: MovingAverage(latSeries, window)},
		}, width); err != nil {
			return err
		}
	}
	return nil
}

type curve struct {
	name   string
	values []float64
}

func writeCurves(w io.Writer, curves []curve, width int) error {
	for _, c := range curves {
		if len(c.values) == 0 {
			continue
		}
		last := c.values[len(c.values)-1]
		if _, err := fmt.Fprintf(w, "%-*s %s %.1f\n", curveLabelWidth, c.name, Sparkline(c.values, width), last); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
