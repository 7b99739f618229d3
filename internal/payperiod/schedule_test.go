package payperiod

import (
	"testing"
	"time"

	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSchedulePeriodFor(t *testing.T) {
	sched, err := NewSchedule(date(2025, time.January, 1), date(2025, time.June, 30))
	require.NoError(t, err)

	tests := []struct {
		name      string
		wantLabel string
		date      time.Time
	}{
		{
			name:      "mid period",
			date:      date(2025, time.March, 10),
			wantLabel: "March 2025", // [Feb 26, Mar 26)
		},
		{
			name:      "start of period is inclusive",
			date:      date(2025, time.February, 26),
			wantLabel: "March 2025",
		},
		{
			name:      "end of period is exclusive",
			date:      date(2025, time.March, 26),
			wantLabel: "April 2025",
		},
		{
			name:      "january resolves against prior december payday",
			date:      date(2025, time.January, 5),
			wantLabel: "January 2025", // [Dec 26 2024, Jan 24 2025)
		},
		{
			name:      "day after shifted january payday",
			date:      date(2025, time.January, 24), // payday shifted from Sun 26th to Fri 24th
			wantLabel: "February 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := sched.PeriodFor(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, p.Label())
		})
	}
}

func TestSchedulePartitionComplete(t *testing.T) {
	// Every date across a multi-month span maps to exactly one period, and
	// periods are contiguous with no gaps or overlaps.
	start := date(2024, time.November, 1)
	end := date(2025, time.April, 30)

	sched, err := NewSchedule(start, end)
	require.NoError(t, err)

	periods := sched.Periods()
	require.NotEmpty(t, periods)

	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].End, periods[i].Start, "periods must be contiguous")
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		matches := 0
		for _, p := range periods {
			if p.Contains(d) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "date %s must map to exactly one period", d.Format("2006-01-02"))
	}
}

func TestScheduleForTransactions(t *testing.T) {
	txns := []model.Transaction{
		{ID: "1", Date: date(2025, time.March, 10), Amount: -45},
		{ID: "2", Date: date(2025, time.March, 12), Amount: 45},
		{ID: "3", Date: date(2025, time.April, 2), Amount: -100},
	}

	sched, err := ScheduleFor(txns)
	require.NoError(t, err)

	byPeriod, unassigned := sched.Partition(txns)
	assert.Empty(t, unassigned)
	assert.Len(t, byPeriod["2025-03"], 2)
	assert.Len(t, byPeriod["2025-04"], 1)
}

func TestScheduleForEmpty(t *testing.T) {
	_, err := ScheduleFor(nil)
	assert.ErrorIs(t, err, ErrEmptySpan)
}

func TestPeriodByLabel(t *testing.T) {
	sched, err := NewSchedule(date(2025, time.February, 1), date(2025, time.March, 31))
	require.NoError(t, err)

	p, ok := sched.PeriodByLabel("March 2025")
	require.True(t, ok)
	assert.Equal(t, date(2025, time.February, 26), p.Start)
	assert.Equal(t, date(2025, time.March, 26), p.End)

	_, ok = sched.PeriodByLabel("March 1999")
	assert.False(t, ok)
}
