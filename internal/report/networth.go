package report

import (
	"math"
	"strings"

	"github.com/pkearns/pay-the-piper/internal/model"
)

// NetWorth holds the pieces of the net-worth calculation.
type NetWorth struct {
	LoanBalances      map[string]float64
	TotalCash         float64
	Retirement        float64
	CreditCardBalance float64
	Total             float64
}

// ComputeNetWorth derives net worth from balance snapshots, credit-card
// activity, and fixed-principal loans paid down by matching transactions.
// Snapshots are opaque user-entered numbers; the credit-card balance is the
// signed sum of the credit line's transactions.
func (c Config) ComputeNetWorth(snapshots []model.BalanceSnapshot, transactions []model.Transaction, loans []model.Loan) NetWorth {
	nw := NetWorth{LoanBalances: make(map[string]float64)}

	for _, snap := range snapshots {
		switch snap.Account {
		case model.BalanceRetirement:
			nw.Retirement += snap.Amount
		default:
			nw.TotalCash += snap.Amount
		}
	}

	for _, txn := range transactions {
		if c.isCreditCard(txn.Bank) {
			nw.CreditCardBalance += txn.Amount
		}
	}
	nw.CreditCardBalance = round2(nw.CreditCardBalance)

	var loanTotal float64
	for _, loan := range loans {
		paid := 0.0
		for _, txn := range transactions {
			if strings.Contains(txn.Description, loan.Pattern) {
				paid += txn.Amount
			}
		}
		// Payments are debits, so the remaining balance is principal plus the
		// (negative) paid total.
		balance := round2(loan.Principal + paid)
		nw.LoanBalances[loan.Name] = balance
		loanTotal += balance
	}

	nw.Total = round2(nw.TotalCash + nw.Retirement - math.Abs(nw.CreditCardBalance) - loanTotal)
	return nw
}
