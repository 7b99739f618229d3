package storage

import (
	"context"
	"testing"
	"time"

	"github.com/pkearns/pay-the-piper/internal/common"
	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTxn(id string, day int, amount float64) model.Transaction {
	return model.Transaction{
		ID:          id,
		Date:        time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC),
		Description: "TEST VENDOR " + id,
		Bank:        "chase-checking",
		Amount:      amount,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestSaveAndGetTransactions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txns := []model.Transaction{
		testTxn("1", 10, -45.00),
		testTxn("2", 12, 45.00),
		testTxn("3", 15, -100.00),
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	got, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, -100.00, got[0].Amount)
}

func TestSaveTransactionsDeduplicates(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txns := []model.Transaction{testTxn("1", 10, -45.00)}
	require.NoError(t, store.SaveTransactions(ctx, txns))
	require.NoError(t, store.SaveTransactions(ctx, txns))

	got, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSaveTransactionsValidation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.SaveTransactions(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)

	err = store.SaveTransactions(ctx, []model.Transaction{})
	assert.ErrorIs(t, err, ErrEmptySlice)

	err = store.SaveTransactions(ctx, []model.Transaction{{ID: "x"}})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestGetTransactionsFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txns := []model.Transaction{
		{ID: "1", Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), Description: "STARBUCKS #123", Bank: "amex", Amount: -6.50},
		{ID: "2", Date: time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), Description: "RENT PAYMENT", Bank: "chase-checking", Amount: -1200},
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	got, err := store.GetTransactions(ctx, service.TransactionFilter{Search: "starbucks"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got, err = store.GetTransactions(ctx, service.TransactionFilter{Bank: "chase-checking"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	start := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	got, err = store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestGetTransactionByID(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{testTxn("42", 10, -9.99)}))

	got, err := store.GetTransactionByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, -9.99, got.Amount)

	_, err = store.GetTransactionByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactionDateBoundaries(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.GetEarliestTransactionDate(ctx)
	assert.ErrorIs(t, err, common.ErrNoTransactions)

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		testTxn("1", 5, -1),
		testTxn("2", 20, -1),
	}))

	earliest, err := store.GetEarliestTransactionDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, earliest.Day())

	latest, err := store.GetLatestTransactionDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, latest.Day())
}

func TestCategoryDictionaryMerge(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.MergeCategoryDictionary(ctx, map[string]string{
		"STARBUCKS #123": "Dining Out",
		"RENT PAYMENT":   "Rent/Mortgage",
	}))

	// Merging again updates per key instead of overwriting wholesale.
	require.NoError(t, store.MergeCategoryDictionary(ctx, map[string]string{
		"STARBUCKS #123": "Entertainment",
	}))

	dict, err := store.GetCategoryDictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Entertainment", dict["STARBUCKS #123"])
	assert.Equal(t, "Rent/Mortgage", dict["RENT PAYMENT"])
}

func TestGetUncategorizedDescriptions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		{ID: "1", Date: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), Description: "KNOWN VENDOR", Bank: "amex", Amount: -5},
		{ID: "2", Date: time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), Description: "NEW VENDOR", Bank: "amex", Amount: -10},
		{ID: "3", Date: time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), Description: "NEW VENDOR", Bank: "amex", Amount: -15},
	}))
	require.NoError(t, store.MergeCategoryDictionary(ctx, map[string]string{
		"KNOWN VENDOR": "Shopping",
	}))

	descriptions, err := store.GetUncategorizedDescriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW VENDOR"}, descriptions, "distinct and dictionary-filtered")
}

func TestOverrideStores(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SetPermanentOverride(ctx, "STARBUCKS", "Dining Out"))
	require.NoError(t, store.SetPermanentOverride(ctx, "STARBUCKS", "Entertainment"))
	require.NoError(t, store.SetOneOffOverride(ctx, "42", "Miscellaneous"))

	permanent, err := store.GetPermanentOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"STARBUCKS": "Entertainment"}, permanent)

	oneOff, err := store.GetOneOffOverrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"42": "Miscellaneous"}, oneOff)

	require.NoError(t, store.DeletePermanentOverride(ctx, "STARBUCKS"))
	permanent, err = store.GetPermanentOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, permanent)

	require.NoError(t, store.DeleteOneOffOverride(ctx, "42"))
	oneOff, err = store.GetOneOffOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, oneOff)
}

func TestBalanceSnapshots(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SetBalance(ctx, model.BalanceChecking, 5000))
	require.NoError(t, store.SetBalance(ctx, model.BalanceChecking, 5200))
	require.NoError(t, store.SetBalance(ctx, model.BalanceRetirement, 30000))

	balances, err := store.GetBalances(ctx)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, model.BalanceChecking, balances[0].Account)
	assert.Equal(t, 5200.0, balances[0].Amount)
	assert.Equal(t, model.BalanceRetirement, balances[1].Account)
}
