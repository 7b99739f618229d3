// Package reconcile detects charge/refund pairs within a pay period so they
// net to zero instead of double-counting in income and expense totals.
package reconcile

import (
	"math"
	"sort"
	"time"

	"github.com/pkearns/pay-the-piper/internal/model"
)

// DateToleranceDays is the maximum distance, inclusive, between a charge and
// the refund that cancels it.
const DateToleranceDays = 3

// Pair links one charge with the refund that cancels it.
type Pair struct {
	ChargeID string
	RefundID string
	Cents    int64
}

// Result holds the outcome of one reconciliation run.
type Result struct {
	Transactions []model.Transaction
	Pairs        []Pair
}

// Period pairs opposite-sign transactions of equal absolute amount within the
// date tolerance, scanning one pay period's transactions. Matching is greedy:
// each charge takes the first qualifying refund, and a used refund leaves the
// pool. Charges and refunds are scanned in (date, id) order so the result is
// stable across runs. Paired legs are retyped Ignored; everything else keeps
// its type. Finding no pairs is the common case, not an error.
func Period(transactions []model.Transaction) Result {
	byAmount := make(map[int64][]int)
	for i, txn := range transactions {
		byAmount[txn.AbsCents()] = append(byAmount[txn.AbsCents()], i)
	}

	paired := make(map[int]bool)
	var pairs []Pair

	amounts := make([]int64, 0, len(byAmount))
	for cents := range byAmount {
		amounts = append(amounts, cents)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })

	for _, cents := range amounts {
		group := byAmount[cents]

		var charges, refunds []int
		for _, idx := range group {
			switch {
			case transactions[idx].Amount < 0:
				charges = append(charges, idx)
			case transactions[idx].Amount > 0:
				refunds = append(refunds, idx)
			}
		}

		sortByDateThenID(transactions, charges)
		sortByDateThenID(transactions, refunds)

		for _, chargeIdx := range charges {
			for _, refundIdx := range refunds {
				if paired[refundIdx] {
					continue
				}
				if !withinTolerance(transactions[chargeIdx].Date, transactions[refundIdx].Date) {
					continue
				}

				paired[chargeIdx] = true
				paired[refundIdx] = true
				pairs = append(pairs, Pair{
					ChargeID: transactions[chargeIdx].ID,
					RefundID: transactions[refundIdx].ID,
					Cents:    cents,
				})
				break
			}
		}
	}

	out := make([]model.Transaction, len(transactions))
	for i, txn := range transactions {
		if paired[i] {
			txn.Type = model.TypeIgnored
		}
		out[i] = txn
	}

	return Result{Transactions: out, Pairs: pairs}
}

func sortByDateThenID(transactions []model.Transaction, indices []int) {
	sort.Slice(indices, func(i, j int) bool {
		a, b := transactions[indices[i]], transactions[indices[j]]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
}

// withinTolerance compares calendar days, not elapsed time. Fetched
// transactions carry a time of day, and a charge and refund three calendar
// days apart must still pair even when the clock gap exceeds 72 hours.
func withinTolerance(a, b time.Time) bool {
	days := calendarDay(a).Sub(calendarDay(b)).Hours() / 24
	return math.Abs(days) <= DateToleranceDays
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
