package engine

import (
	"math"
	"time"
)

// CharsPerWord is the conventional word length used by WPM.
const CharsPerWord = 5.0

// Metrics are derived typing statistics.
type Metrics struct {
	WPM       float64
	NetWPM    float64
	RawWPM    float64
	CPM       float64
	Accuracy  float64
	Correct   int
	Incorrect int
	Mistakes  int
	Elapsed   time.Duration
}

// ComputeMetrics derives metrics from counts over elapsed time. Degenerate
// inputs (nothing typed, no elapsed time) yield zeros rather than NaN or Inf.
func ComputeMetrics(c Counts, basis WPMBasis, elapsed time.Duration) Metrics {
	m := Metrics{
		Correct:   c.Correct,
		Incorrect: c.Incorrect,
		Mistakes:  c.Incorrect,
		Elapsed:   elapsed,
	}
	if total := c.Correct + c.Incorrect; total > 0 {
		m.Accuracy = clamp(float64(c.Correct) / float64(total) * 100)
	}
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return m
	}
	basisChars := c.Correct
	if basis == BasisTyped {
		basisChars = c.Typed
	}
	m.WPM = wordsPerMinute(basisChars, minutes)
	m.RawWPM = wordsPerMinute(c.Typed, minutes)
	if c.Typed > 0 {
		m.NetWPM = clamp(math.Round((float64(c.Typed)/CharsPerWord - float64(c.Incorrect)) / minutes))
	}
	m.CPM = clamp(math.Round(float64(c.Correct) / minutes))
	return m
}

func wordsPerMinute(chars int, minutes float64) float64 {
	if chars <= 0 {
		return 0
	}
	words := math.Max(1, float64(chars)/CharsPerWord)
	return clamp(math.Round(words / minutes))
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
