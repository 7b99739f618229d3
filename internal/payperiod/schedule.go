package payperiod

import (
	"errors"
	"time"

	"github.com/pkearns/pay-the-piper/internal/model"
)

// ErrEmptySpan indicates a schedule was requested for no dates.
var ErrEmptySpan = errors.New("no dates to build a pay period schedule from")

// ErrDateOutOfRange indicates a date outside the schedule's span.
var ErrDateOutOfRange = errors.New("date outside pay period schedule")

// Schedule partitions a span of calendar dates into contiguous,
// non-overlapping pay periods. Every date in the span maps to exactly one
// period.
type Schedule struct {
	periods []model.Period
}

// NewSchedule builds the periods covering every date in [start, end].
func NewSchedule(start, end time.Time) (*Schedule, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrEmptySpan
	}

	first := dateOnly(start)
	last := dateOnly(end)
	if last.Before(first) {
		first, last = last, first
	}

	// Walk paydays month by month, starting one month before the span so the
	// first period is guaranteed to begin on or before the first date.
	cur := prevPayday(first.Year(), first.Month())

	var periods []model.Period
	for !cur.After(last) {
		next := nextPayday(cur.Year(), cur.Month())
		p := model.Period{Start: cur, End: next}
		if p.End.After(first) {
			periods = append(periods, p)
		}
		cur = next
	}

	return &Schedule{periods: periods}, nil
}

// ScheduleFor builds a schedule spanning the given transactions' dates.
func ScheduleFor(transactions []model.Transaction) (*Schedule, error) {
	if len(transactions) == 0 {
		return nil, ErrEmptySpan
	}

	min := transactions[0].Date
	max := transactions[0].Date
	for _, txn := range transactions[1:] {
		if txn.Date.Before(min) {
			min = txn.Date
		}
		if txn.Date.After(max) {
			max = txn.Date
		}
	}

	return NewSchedule(min, max)
}

// Periods returns the schedule's periods in chronological order.
func (s *Schedule) Periods() []model.Period {
	return s.periods
}

// PeriodFor returns the period containing date.
func (s *Schedule) PeriodFor(date time.Time) (model.Period, error) {
	for _, p := range s.periods {
		if p.Contains(date) {
			return p, nil
		}
	}
	return model.Period{}, ErrDateOutOfRange
}

// PeriodByLabel returns the period with the given human label, e.g.
// "March 2025".
func (s *Schedule) PeriodByLabel(label string) (model.Period, bool) {
	for _, p := range s.periods {
		if p.Label() == label {
			return p, true
		}
	}
	return model.Period{}, false
}

// Partition groups transactions by period key. Transactions outside the
// schedule's span are returned separately rather than silently dropped.
func (s *Schedule) Partition(transactions []model.Transaction) (map[string][]model.Transaction, []model.Transaction) {
	byPeriod := make(map[string][]model.Transaction)
	var unassigned []model.Transaction

	for _, txn := range transactions {
		p, err := s.PeriodFor(txn.Date)
		if err != nil {
			unassigned = append(unassigned, txn)
			continue
		}
		key := p.Key()
		byPeriod[key] = append(byPeriod[key], txn)
	}

	return byPeriod, unassigned
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
