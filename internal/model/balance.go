package model

import "time"

// Balance account name constants. Snapshots are keyed by these names.
const (
	BalanceChecking   = "checking"
	BalanceSavings    = "savings"
	BalanceMiscCash   = "misc_cash"
	BalanceRetirement = "retirement"
)

// BalanceSnapshot is a point-in-time balance for one account, entered by the
// user and used only for net-worth arithmetic.
type BalanceSnapshot struct {
	UpdatedAt time.Time
	Account   string
	Amount    float64
}

// Loan is a fixed-principal liability paid down by transactions whose
// description contains Pattern.
type Loan struct {
	Name      string
	Pattern   string
	Principal float64
}
