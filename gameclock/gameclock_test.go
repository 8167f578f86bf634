package gameclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"walletbot/models"
)

func TestPeriodIDAt(t *testing.T) {
	// 13:05 is minute 785 of the day
	at := time.Date(2026, 8, 30, 13, 5, 30, 0, time.UTC)
	assert.Equal(t, int64(20260830000785), periodIDAt(at))

	// Midnight is sequence zero
	midnight := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(20260830000000), periodIDAt(midnight))

	// Last minute of the day
	lastMinute := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, int64(20261231001439), periodIDAt(lastMinute))
}

func TestPeriodIDAt_StableWithinPeriod(t *testing.T) {
	start := time.Date(2026, 8, 30, 13, 5, 0, 0, time.UTC)
	end := time.Date(2026, 8, 30, 13, 5, 59, 0, time.UTC)
	next := time.Date(2026, 8, 30, 13, 6, 0, 0, time.UTC)

	assert.Equal(t, periodIDAt(start), periodIDAt(end))
	assert.Equal(t, periodIDAt(start)+1, periodIDAt(next))
}

func TestSecondsLeftAt(t *testing.T) {
	assert.Equal(t, 60, secondsLeftAt(time.Date(2026, 8, 30, 13, 5, 0, 0, time.UTC)))
	assert.Equal(t, 30, secondsLeftAt(time.Date(2026, 8, 30, 13, 5, 30, 0, time.UTC)))
	assert.Equal(t, 1, secondsLeftAt(time.Date(2026, 8, 30, 13, 5, 59, 0, time.UTC)))
}

func TestStatusAt(t *testing.T) {
	assert.Equal(t, models.PeriodOpen, statusAt(time.Date(2026, 8, 30, 13, 5, 10, 0, time.UTC)))
	assert.Equal(t, models.PeriodOpen, statusAt(time.Date(2026, 8, 30, 13, 5, 54, 0, time.UTC)))
	assert.Equal(t, models.PeriodClosing, statusAt(time.Date(2026, 8, 30, 13, 5, 55, 0, time.UTC)))
	assert.Equal(t, models.PeriodClosing, statusAt(time.Date(2026, 8, 30, 13, 5, 59, 0, time.UTC)))

	// A running period is only ever open or closing; settled is reserved for
	// drawn periods in the result history
	for sec := 0; sec < 60; sec++ {
		status := statusAt(time.Date(2026, 8, 30, 13, 5, sec, 0, time.UTC))
		assert.NotEqual(t, models.PeriodSettled, status, "second %d", sec)
	}
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		result int
		color  string
	}{
		{0, "violet"},
		{1, "green"},
		{2, "red"},
		{3, "green"},
		{4, "red"},
		{5, "violet"},
		{6, "red"},
		{7, "green"},
		{8, "red"},
		{9, "green"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.color, colorFor(tt.result), "result %d", tt.result)
	}
}
