package report

import (
	"math"
	"sort"

	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/payperiod"
)

// SavingsSeries computes the savings-rate time series: one row per pay
// period, sorted by period date descending for display. SavingsPct is NaN
// when a period has no income.
func (c Config) SavingsSeries(sched *payperiod.Schedule, transactions []model.Transaction) []model.SavingsPoint {
	byPeriod, _ := sched.Partition(transactions)

	var series []model.SavingsPoint
	for _, period := range sched.Periods() {
		txns, ok := byPeriod[period.Key()]
		if !ok {
			continue
		}

		var income, expenses float64
		for _, txn := range txns {
			switch txn.Type {
			case model.TypeIgnored, model.TypeSavings:
				continue
			case model.TypeIncome:
				if !c.isCreditCard(txn.Bank) && txn.Category != "Savings" {
					income += txn.Amount
				}
			default:
				expenses += math.Abs(txn.Amount)
			}
		}

		savings := income - expenses
		pct := math.NaN()
		if income != 0 {
			pct = math.Round(savings/income*1000) / 10
		}

		series = append(series, model.SavingsPoint{
			Period:     period,
			Income:     income,
			Expenses:   expenses,
			Savings:    savings,
			SavingsPct: pct,
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Period.Start.After(series[j].Period.Start)
	})

	return series
}
