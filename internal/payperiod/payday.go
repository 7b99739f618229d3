// Package payperiod maps calendar dates to paycheck-bounded pay periods.
//
// Paychecks land on the 26th of each month, shifted backward to the nearest
// business day when the 26th falls on a weekend. A pay period is the half-open
// interval between two consecutive adjusted paydays and is labeled by the
// month following its start: money earned on the April payday funds "May".
package payperiod

import "time"

// PaydayOfMonth is the nominal payday. No holiday calendar is consulted;
// only weekends shift the date.
const PaydayOfMonth = 26

// ActualPayday returns the adjusted payday for the given month: the 26th, or
// the preceding Friday when the 26th is a Saturday or Sunday.
func ActualPayday(year int, month time.Month) time.Time {
	payday := time.Date(year, month, PaydayOfMonth, 0, 0, 0, 0, time.UTC)

	switch payday.Weekday() {
	case time.Saturday:
		payday = payday.AddDate(0, 0, -1)
	case time.Sunday:
		payday = payday.AddDate(0, 0, -2)
	}

	return payday
}

// nextPayday returns the adjusted payday of the month after (year, month),
// handling the December to January rollover.
func nextPayday(year int, month time.Month) time.Time {
	if month == time.December {
		return ActualPayday(year+1, time.January)
	}
	return ActualPayday(year, month+1)
}

// prevPayday returns the adjusted payday of the month before (year, month),
// handling the January to December rollover.
func prevPayday(year int, month time.Month) time.Time {
	if month == time.January {
		return ActualPayday(year-1, time.December)
	}
	return ActualPayday(year, month-1)
}
