// Package classify assigns transaction types from sign and description, and
// maps categories into the needs/wants/savings buckets.
package classify

import (
	"strings"

	"github.com/pkearns/pay-the-piper/internal/model"
)

// Rules holds the configurable pieces of the rule layer.
type Rules struct {
	// SavingsToken identifies transfers into the savings account. Any
	// transaction whose description contains it (case-insensitive) is retyped
	// to Savings.
	SavingsToken string
}

// DefaultSavingsToken is the savings account identifier found in transfer
// descriptions.
const DefaultSavingsToken = "6031"

// NewRules returns the rule layer with the given savings token, falling back
// to the default when empty.
func NewRules(savingsToken string) Rules {
	if savingsToken == "" {
		savingsToken = DefaultSavingsToken
	}
	return Rules{SavingsToken: savingsToken}
}

// TypeForAmount classifies by sign: a non-negative amount is Income, a
// negative one is Expense. Zero counts as Income.
func TypeForAmount(amount float64) model.TransactionType {
	if amount >= 0 {
		return model.TypeIncome
	}
	return model.TypeExpense
}

// Apply assigns a type to every transaction: Income or Expense by sign, then
// Savings for transactions matching the savings token. Savings transfers are
// stored as debits from checking, so their sign is flipped to read as
// positive contributions. This must run before totals are summed or savings
// transfers double-count as expenses.
func (r Rules) Apply(transactions []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(transactions))
	token := strings.ToLower(r.SavingsToken)

	for i, txn := range transactions {
		txn.Type = TypeForAmount(txn.Amount)

		if token != "" && strings.Contains(strings.ToLower(txn.Description), token) {
			txn.Type = model.TypeSavings
			txn.Amount = -txn.Amount
		}

		out[i] = txn
	}

	return out
}
