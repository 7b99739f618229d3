package reconcile

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

func TestPeriodPairsChargeAndRefund(t *testing.T) {
	txns := []model.Transaction{
		{ID: "1", Date: date(2025, time.March, 10), Amount: -45.00, Description: "GROCERY", Type: model.TypeExpense},
		{ID: "2", Date: date(2025, time.March, 12), Amount: 45.00, Description: "GROCERY REFUND", Type: model.TypeIncome},
		{ID: "3", Date: date(2025, time.March, 15), Amount: -100.00, Description: "RENT", Type: model.TypeExpense},
	}

	result := Period(txns)

	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "1", result.Pairs[0].ChargeID)
	assert.Equal(t, "2", result.Pairs[0].RefundID)
	assert.Equal(t, int64(4500), result.Pairs[0].Cents)

	assert.Equal(t, model.TypeIgnored, result.Transactions[0].Type)
	assert.Equal(t, model.TypeIgnored, result.Transactions[1].Type)
	assert.Equal(t, model.TypeExpense, result.Transactions[2].Type, "unpaired transaction keeps its type")
}

func TestPeriodDateTolerance(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		wantPair bool
	}{
		{name: "same day pairs", days: 0, wantPair: true},
		{name: "exactly 3 days apart pairs", days: 3, wantPair: true},
		{name: "4 days apart does not pair", days: 4, wantPair: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charge := date(2025, time.March, 10)
			txns := []model.Transaction{
				{ID: "c", Date: charge, Amount: -20.00, Type: model.TypeExpense},
				{ID: "r", Date: charge.AddDate(0, 0, tt.days), Amount: 20.00, Type: model.TypeIncome},
			}

			result := Period(txns)
			if tt.wantPair {
				assert.Len(t, result.Pairs, 1)
			} else {
				assert.Empty(t, result.Pairs)
				assert.Equal(t, model.TypeExpense, result.Transactions[0].Type)
				assert.Equal(t, model.TypeIncome, result.Transactions[1].Type)
			}
		})
	}
}

func TestPeriodToleranceCountsCalendarDays(t *testing.T) {
	// Fetched transactions carry a time of day. Three calendar days apart
	// must pair even when the clock gap is nearly 95 hours, and four
	// calendar days apart must not pair even when the clock gap is under
	// 72 hours.
	tests := []struct {
		name     string
		charge   time.Time
		refund   time.Time
		wantPair bool
	}{
		{
			name:     "3 calendar days, over 72 hours",
			charge:   time.Date(2025, time.March, 10, 1, 0, 0, 0, time.UTC),
			refund:   time.Date(2025, time.March, 13, 23, 0, 0, 0, time.UTC),
			wantPair: true,
		},
		{
			name:     "4 calendar days, under 72 hours",
			charge:   time.Date(2025, time.March, 10, 23, 0, 0, 0, time.UTC),
			refund:   time.Date(2025, time.March, 14, 1, 0, 0, 0, time.UTC),
			wantPair: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := []model.Transaction{
				{ID: "c", Date: tt.charge, Amount: -20.00, Type: model.TypeExpense},
				{ID: "r", Date: tt.refund, Amount: 20.00, Type: model.TypeIncome},
			}

			result := Period(txns)
			if tt.wantPair {
				assert.Len(t, result.Pairs, 1)
			} else {
				assert.Empty(t, result.Pairs)
			}
		})
	}
}

func TestPeriodRefundUsedOnce(t *testing.T) {
	// Two charges, one refund: only one charge pairs.
	txns := []model.Transaction{
		{ID: "c1", Date: date(2025, time.March, 10), Amount: -30.00, Type: model.TypeExpense},
		{ID: "c2", Date: date(2025, time.March, 11), Amount: -30.00, Type: model.TypeExpense},
		{ID: "r1", Date: date(2025, time.March, 12), Amount: 30.00, Type: model.TypeIncome},
	}

	result := Period(txns)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "c1", result.Pairs[0].ChargeID, "earliest charge takes the refund")
}

func TestPeriodDeterministicTieBreak(t *testing.T) {
	// Two refunds qualify for one charge: the earliest-dated refund wins,
	// with ID breaking date ties. Order of the input slice must not matter.
	front := []model.Transaction{
		{ID: "rB", Date: date(2025, time.March, 11), Amount: 15.00, Type: model.TypeIncome},
		{ID: "rA", Date: date(2025, time.March, 11), Amount: 15.00, Type: model.TypeIncome},
		{ID: "c", Date: date(2025, time.March, 10), Amount: -15.00, Type: model.TypeExpense},
	}
	back := []model.Transaction{front[2], front[0], front[1]}

	r1 := Period(front)
	r2 := Period(back)

	require.Len(t, r1.Pairs, 1)
	require.Len(t, r2.Pairs, 1)
	assert.Equal(t, "rA", r1.Pairs[0].RefundID)
	assert.Equal(t, r1.Pairs[0], r2.Pairs[0])
}

func TestPeriodIdempotent(t *testing.T) {
	txns := []model.Transaction{
		{ID: "1", Date: date(2025, time.March, 10), Amount: -45.00, Type: model.TypeExpense},
		{ID: "2", Date: date(2025, time.March, 12), Amount: 45.00, Type: model.TypeIncome},
		{ID: "3", Date: date(2025, time.March, 15), Amount: -100.00, Type: model.TypeExpense},
	}

	first := Period(txns)
	second := Period(first.Transactions)

	assert.Equal(t, first.Pairs, second.Pairs)
	assert.Equal(t, first.Transactions, second.Transactions)
}

func TestPeriodNoMatchesIsNotAnError(t *testing.T) {
	txns := []model.Transaction{
		{ID: "1", Date: date(2025, time.March, 10), Amount: -45.00, Type: model.TypeExpense},
		{ID: "2", Date: date(2025, time.March, 15), Amount: -100.00, Type: model.TypeExpense},
	}

	result := Period(txns)
	assert.Empty(t, result.Pairs)
	assert.Equal(t, txns, result.Transactions)
}

func TestPeriodDifferentAmountsNeverPair(t *testing.T) {
	txns := []model.Transaction{
		{ID: "1", Date: date(2025, time.March, 10), Amount: -45.00, Type: model.TypeExpense},
		{ID: "2", Date: date(2025, time.March, 10), Amount: 45.01, Type: model.TypeIncome},
	}

	result := Period(txns)
	assert.Empty(t, result.Pairs)
}
