// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"time"
)

// TransactionType labels how a transaction counts toward period totals.
type TransactionType string

const (
	// TypeIncome marks money coming in (amount >= 0).
	TypeIncome TransactionType = "Income"
	// TypeExpense marks money going out (amount < 0).
	TypeExpense TransactionType = "Expense"
	// TypeSavings marks transfers into the savings account.
	TypeSavings TransactionType = "Savings"
	// TypeIgnored marks transactions excluded from totals, e.g. refund pairs.
	TypeIgnored TransactionType = "Ignored"
)

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string // Raw transaction description
	Bank        string // Source account tag, e.g. "chase-checking", "amex"
	Category    string // Empty until classified
	Type        TransactionType
	Hash        string
	Amount      float64 // Signed; debits are negative
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.Bank)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// AbsCents returns the absolute amount in whole cents. Refund pairing groups
// transactions by cents to avoid float drift.
func (t *Transaction) AbsCents() int64 {
	return int64(math.Round(math.Abs(t.Amount) * 100))
}
