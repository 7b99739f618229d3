package model

// PeriodSummary aggregates one pay period's transactions. It is derived and
// recomputed on demand, never persisted independently of its transactions.
type PeriodSummary struct {
	Period     Period
	ByCategory map[string]float64
	Income     float64
	Expense    float64 // Negative: sum of signed expense amounts
	Savings    float64
	Ignored    int // Count of refund-paired transactions excluded from totals
}

// BucketSplit is the needs/wants/savings view of one period's spending.
// Unmapped holds categories absent from the bucket table; they are excluded
// from the split but retained in raw category totals.
type BucketSplit struct {
	Totals   map[Bucket]float64
	Unmapped []string
}

// SavingsPoint is one row of the savings-rate time series. SavingsPct is NaN
// when the period has no income.
type SavingsPoint struct {
	Period     Period
	Income     float64
	Expenses   float64 // Absolute value
	Savings    float64 // Income - Expenses
	SavingsPct float64
}
