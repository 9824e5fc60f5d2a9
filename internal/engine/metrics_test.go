package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeMetricsGuards(t *testing.T) {
	m := ComputeMetrics(Counts{Correct: 10, Typed: 10}, BasisCorrect, 0)
	assert.Zero(t, m.WPM)
	assert.Zero(t, m.CPM)
	assert.Equal(t, 100.0, m.Accuracy)

	m = ComputeMetrics(Counts{}, BasisTyped, time.Minute)
	assert.Zero(t, m.WPM)
	assert.Zero(t, m.NetWPM)
	assert.Zero(t, m.Accuracy)

	m = ComputeMetrics(Counts{Correct: 5, Typed: 5}, BasisCorrect, -time.Second)
	assert.Zero(t, m.WPM)
	for _, v := range []float64{m.WPM, m.RawWPM, m.NetWPM, m.CPM, m.Accuracy} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestComputeMetricsFormula(t *testing.T) {
	m := ComputeMetrics(Counts{Correct: 50, Incorrect: 10, Typed: 60}, BasisCorrect, 30*time.Second)
	assert.Equal(t, 20.0, m.WPM)
	assert.Equal(t, 24.0, m.RawWPM)
	assert.Equal(t, 4.0, m.NetWPM)
	assert.Equal(t, 100.0, m.CPM)
	assert.InDelta(t, 83.333, m.Accuracy, 0.001)
	assert.Equal(t, 10, m.Mistakes)

	typed := ComputeMetrics(Counts{Correct: 50, Incorrect: 10, Typed: 60}, BasisTyped, 30*time.Second)
	assert.Equal(t, 24.0, typed.WPM)
}

func TestComputeMetricsMinimumOneWord(t *testing.T) {
	m := ComputeMetrics(Counts{Correct: 2, Typed: 2}, BasisCorrect, 6*time.Second)
	assert.Equal(t, 10.0, m.WPM)
}

func TestComputeMetricsNetClampsAtZero(t *testing.T) {
	m := ComputeMetrics(Counts{Correct: 0, Incorrect: 10, Typed: 10}, BasisTyped, time.Minute)
	assert.Zero(t, m.NetWPM)
	assert.Zero(t, m.Accuracy)
}
