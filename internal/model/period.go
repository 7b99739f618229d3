package model

import "time"

// Period is the half-open interval between two consecutive adjusted paydays,
// [Start, End). It is labeled by the month following its start payday: a
// transaction dated just after the April payday belongs to period "May".
type Period struct {
	Start time.Time
	End   time.Time
}

// LabelMonth returns the first day of the month the period is named for.
func (p Period) LabelMonth() time.Time {
	next := p.Start.AddDate(0, 1, 0)
	return time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Label formats the period as a human month name and year, e.g. "May 2025".
func (p Period) Label() string {
	return p.LabelMonth().Format("January 2006")
}

// Key formats the period as a sortable year-month code, e.g. "2025-05".
func (p Period) Key() string {
	return p.LabelMonth().Format("2006-01")
}

// Contains reports whether date falls inside the period. The comparison is
// calendar-day based; time-of-day is ignored.
func (p Period) Contains(date time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(p.Start) && d.Before(p.End)
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Start.IsZero()
}
