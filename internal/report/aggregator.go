// Package report computes budget and net-worth metrics over classified
// transactions.
package report

import (
	"math"
	"sort"

	"github.com/pkearns/pay-the-piper/internal/classify"
	"github.com/pkearns/pay-the-piper/internal/model"
)

// Config holds the domain exclusions the aggregator applies.
type Config struct {
	// CreditCardBanks lists source-account tags that are credit lines.
	// Income rows from these accounts are refund/rebate postings, not period
	// income, and are excluded from income totals.
	CreditCardBanks []string
}

// DefaultConfig excludes the AMEX credit card account from income.
func DefaultConfig() Config {
	return Config{CreditCardBanks: []string{"amex"}}
}

func (c Config) isCreditCard(bank string) bool {
	for _, b := range c.CreditCardBanks {
		if b == bank {
			return true
		}
	}
	return false
}

// Summarize sums income, expense, and savings for one period's transactions.
// Ignored transactions and credit-card income are excluded.
func (c Config) Summarize(period model.Period, transactions []model.Transaction) model.PeriodSummary {
	summary := model.PeriodSummary{
		Period:     period,
		ByCategory: make(map[string]float64),
	}

	for _, txn := range transactions {
		if txn.Type == model.TypeIgnored {
			summary.Ignored++
			continue
		}
		if txn.Type == model.TypeIncome && c.isCreditCard(txn.Bank) {
			continue
		}

		switch txn.Type {
		case model.TypeIncome:
			summary.Income += txn.Amount
		case model.TypeExpense:
			summary.Expense += txn.Amount
		case model.TypeSavings:
			summary.Savings += txn.Amount
		}

		if txn.Category != "" && txn.Type == model.TypeExpense {
			summary.ByCategory[txn.Category] += math.Abs(txn.Amount)
		}
	}

	return summary
}

// Split maps one period's spending into the needs/wants/savings buckets.
// The Savings bucket is income minus spending rather than a sum of
// transactions, matching the 50/30/20 convention. Categories without a
// bucket are reported in Unmapped and kept out of the split.
func (c Config) Split(transactions []model.Transaction) model.BucketSplit {
	split := model.BucketSplit{
		Totals: map[model.Bucket]float64{
			model.BucketNeeds:   0,
			model.BucketWants:   0,
			model.BucketSavings: 0,
		},
	}

	var income, spent float64
	unmapped := make(map[string]bool)

	for _, txn := range transactions {
		switch txn.Type {
		case model.TypeIgnored, model.TypeSavings:
			continue
		case model.TypeIncome:
			if !c.isCreditCard(txn.Bank) && txn.Category != "Savings" {
				income += txn.Amount
			}
			continue
		}

		spent += txn.Amount

		bucket, ok := classify.BucketFor(txn.Category)
		if !ok {
			if txn.Category != "" {
				unmapped[txn.Category] = true
			}
			continue
		}
		if bucket == model.BucketSavings {
			continue
		}
		split.Totals[bucket] += math.Abs(txn.Amount)
	}

	split.Totals[model.BucketSavings] = round2(income + spent)

	for cat := range unmapped {
		split.Unmapped = append(split.Unmapped, cat)
	}
	sort.Strings(split.Unmapped)

	return split
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
