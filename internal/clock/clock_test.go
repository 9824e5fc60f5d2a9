package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	clk := NewManual(epoch)
	var order []string
	clk.AfterFunc(300*time.Millisecond, func() { order = append(order, "late") })
	clk.AfterFunc(100*time.Millisecond, func() { order = append(order, "early") })
	clk.AfterFunc(100*time.Millisecond, func() { order = append(order, "early-2") })

	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"early", "early-2"}, order)
	assert.Equal(t, epoch.Add(200*time.Millisecond), clk.Now())
	assert.Equal(t, 1, clk.Pending())

	clk.Advance(time.Second)
	assert.Equal(t, []string{"early", "early-2", "late"}, order)
}

func TestManualFiresTimersScheduledByCallbacks(t *testing.T) {
	clk := NewManual(epoch)
	fired := 0
	clk.AfterFunc(10*time.Millisecond, func() {
		fired++
		clk.AfterFunc(10*time.Millisecond, func() { fired++ })
	})
	clk.Advance(50 * time.Millisecond)
	assert.Equal(t, 2, fired)
}

func TestManualStop(t *testing.T) {
	clk := NewManual(epoch)
	fired := false
	timer := clk.AfterFunc(time.Second, func() { fired = true })
	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	clk.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestTaskDebounces(t *testing.T) {
	clk := NewManual(epoch)
	runs := 0
	task := NewTask(clk, func() { runs++ })

	task.Schedule(100 * time.Millisecond)
	clk.Advance(60 * time.Millisecond)
	task.Schedule(100 * time.Millisecond)
	clk.Advance(60 * time.Millisecond)
	assert.Equal(t, 0, runs)
	assert.True(t, task.Pending())

	clk.Advance(40 * time.Millisecond)
	assert.Equal(t, 1, runs)
	assert.False(t, task.Pending())
}

func TestTaskCancel(t *testing.T) {
	clk := NewManual(epoch)
	runs := 0
	task := NewTask(clk, func() { runs++ })
	task.Schedule(100 * time.Millisecond)
	task.Cancel()
	clk.Advance(time.Second)
	assert.Equal(t, 0, runs)
	assert.Equal(t, 0, clk.Pending())
}
