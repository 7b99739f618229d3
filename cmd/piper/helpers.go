package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/pkearns/pay-the-piper/internal/classify"
	"github.com/pkearns/pay-the-piper/internal/config"
	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/overrides"
	"github.com/pkearns/pay-the-piper/internal/payperiod"
	"github.com/pkearns/pay-the-piper/internal/reconcile"
	"github.com/pkearns/pay-the-piper/internal/report"
	"github.com/pkearns/pay-the-piper/internal/service"
	"github.com/pkearns/pay-the-piper/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func reportConfig() report.Config {
	cfg := report.DefaultConfig()
	if banks := viper.GetStringSlice("report.credit_card_banks"); len(banks) > 0 {
		cfg.CreditCardBanks = banks
	}
	return cfg
}

// loadClassified pulls every transaction, fills base categories from the
// dictionary, runs the type rules, and applies overrides. Uncategorized
// transactions come back separately so commands can surface them.
func loadClassified(ctx context.Context, store service.Storage) (classified, uncategorized []model.Transaction, err error) {
	txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	dictionary, err := store.GetCategoryDictionary(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load category dictionary: %w", err)
	}
	for i, txn := range txns {
		if txn.Category == "" {
			txns[i].Category = dictionary[txn.Description]
		}
	}

	rules := classify.NewRules(viper.GetString("classify.savings_token"))
	txns = rules.Apply(txns)

	resolver, err := overrides.Load(ctx, store)
	if err != nil {
		return nil, nil, err
	}

	classified, uncategorized = resolver.Apply(txns)
	return classified, uncategorized, nil
}

// reconciledPeriods partitions transactions by pay period and pairs refunds
// within each period. Transactions outside the schedule are returned as
// unassigned.
func reconciledPeriods(sched *payperiod.Schedule, txns []model.Transaction) (map[string][]model.Transaction, []model.Transaction) {
	byPeriod, unassigned := sched.Partition(txns)

	reconciled := make(map[string][]model.Transaction, len(byPeriod))
	for key, periodTxns := range byPeriod {
		result := reconcile.Period(periodTxns)
		reconciled[key] = result.Transactions
	}

	return reconciled, unassigned
}

// flatten rejoins reconciled periods into one slice for whole-history
// calculations like the savings series.
func flatten(sched *payperiod.Schedule, byPeriod map[string][]model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, period := range sched.Periods() {
		out = append(out, byPeriod[period.Key()]...)
	}
	return out
}
