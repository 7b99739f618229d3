// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/pkearns/pay-the-piper/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Search    string // Substring match across id, description, bank, category
	Bank      string
	Limit     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetUncategorizedDescriptions(ctx context.Context) ([]string, error)
	GetEarliestTransactionDate(ctx context.Context) (time.Time, error)
	GetLatestTransactionDate(ctx context.Context) (time.Time, error)

	// Category dictionary: description -> category, written by the external
	// categorizer, merged last-writer-wins per key.
	GetCategoryDictionary(ctx context.Context) (map[string]string, error)
	MergeCategoryDictionary(ctx context.Context, entries map[string]string) error

	// Override stores
	GetPermanentOverrides(ctx context.Context) (map[string]string, error)
	SetPermanentOverride(ctx context.Context, description, category string) error
	DeletePermanentOverride(ctx context.Context, description string) error
	GetOneOffOverrides(ctx context.Context) (map[string]string, error)
	SetOneOffOverride(ctx context.Context, transactionID, category string) error
	DeleteOneOffOverride(ctx context.Context, transactionID string) error

	// Balance snapshots
	GetBalances(ctx context.Context) ([]model.BalanceSnapshot, error)
	SetBalance(ctx context.Context, account string, amount float64) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Categorizer assigns one category from the fixed set to each distinct
// description. Missing entries in the result mean "uncategorized"; callers
// must not default them.
type Categorizer interface {
	CategorizeAll(ctx context.Context, descriptions []string) (map[string]string, error)
}

// TransactionFetcher pulls transactions from an external aggregator.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
}

// ReportWriter exports period summaries, e.g. to a spreadsheet.
type ReportWriter interface {
	Write(ctx context.Context, summaries []model.PeriodSummary, series []model.SavingsPoint) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
