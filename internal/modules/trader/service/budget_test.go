package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBudgetFirstObservation(t *testing.T) {
	g := NewBudget()
	assert.False(t, g.Initialized())

	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	g.Observe(d("1000"), now)

	b := g.Snapshot()
	assert.True(t, g.Initialized())
	assert.True(t, b.DayStartBalance.Equal(d("1000")))
	assert.True(t, b.PeakBalance.Equal(d("1000")))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), b.Day)
}

func TestBudgetDayRollover(t *testing.T) {
	g := NewBudget()
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	g.Observe(d("1000"), day1)
	g.Observe(d("950"), day1.Add(6*time.Hour))

	// crossing the UTC boundary resets the day-start balance
	g.Observe(d("940"), day1.Add(16*time.Hour))
	b := g.Snapshot()
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), b.Day)
	assert.True(t, b.DayStartBalance.Equal(d("940")))

	// peak survives the rollover
	assert.True(t, b.PeakBalance.Equal(d("1000")))
}

func TestBudgetPeakMonotonic(t *testing.T) {
	g := NewBudget()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	g.Observe(d("1000"), now)
	g.Observe(d("1200"), now.Add(time.Minute))
	g.Observe(d("800"), now.Add(2*time.Minute))

	b := g.Snapshot()
	assert.True(t, b.PeakBalance.Equal(d("1200")))
	assert.True(t, b.CurrentBalance.Equal(d("800")))
}

func TestBudgetMarkEntry(t *testing.T) {
	g := NewBudget()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	g.Observe(d("1000"), now)
	g.MarkEntry(now.Add(time.Minute))

	assert.Equal(t, now.Add(time.Minute), g.Snapshot().LastEntry)
}
