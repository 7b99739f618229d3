package plaid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/service"
	"github.com/pkearns/pay-the-piper/internal/storage"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid sandbox config",
			cfg: Config{
				ClientID:    "client-id",
				Secret:      "secret",
				Environment: "sandbox",
				AccessToken: "access-token",
			},
		},
		{
			name: "missing client ID",
			cfg: Config{
				Secret:      "secret",
				Environment: "sandbox",
				AccessToken: "access-token",
			},
			wantErr: "client ID is required",
		},
		{
			name: "missing secret",
			cfg: Config{
				ClientID:    "client-id",
				Environment: "sandbox",
				AccessToken: "access-token",
			},
			wantErr: "secret is required",
		},
		{
			name: "missing access token",
			cfg: Config{
				ClientID:    "client-id",
				Secret:      "secret",
				Environment: "sandbox",
			},
			wantErr: "access token is required",
		},
		{
			name: "bad environment",
			cfg: Config{
				ClientID:    "client-id",
				Secret:      "secret",
				Environment: "development",
				AccessToken: "access-token",
			},
			wantErr: "invalid Plaid environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewClientAllowsEmptyAccessToken(t *testing.T) {
	// The Link flow starts before an access token exists.
	client, err := NewClient(Config{
		ClientID:    "client-id",
		Secret:      "secret",
		Environment: "sandbox",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestCleanMerchantName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"STARBUCKS STORE 57442201", "Starbucks Store"},
		{"ACME WIDGETS LLC", "Acme Widgets"},
		{"whole foods market", "Whole Foods Market"},
		{"NETFLIX.COM", "Netflix.Com"},
		{"SHELL 123", "Shell 123"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMerchantName(tt.input))
		})
	}
}

func TestBankForFallsBackToAccountID(t *testing.T) {
	c := &Client{accountBanks: map[string]string{"acct-1": "chase-checking"}}

	assert.Equal(t, "chase-checking", c.bankFor("acct-1"))
	assert.Equal(t, "acct-2", c.bankFor("acct-2"))
}

func TestMockClientFeedsImportPipeline(t *testing.T) {
	ctx := context.Background()

	fetched := []model.Transaction{
		{
			ID:          "plaid-txn-1",
			Date:        time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			Description: "Whole Foods",
			Bank:        "chase-checking",
			Amount:      -54.20,
		},
		{
			ID:          "plaid-txn-2",
			Date:        time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
			Description: "Payroll",
			Bank:        "chase-checking",
			Amount:      2000.00,
		},
	}
	for i := range fetched {
		fetched[i].Hash = fetched[i].GenerateHash()
	}

	mock := NewMockClient()
	mock.GetTransactionsFn = func(_ context.Context, _, _ time.Time) ([]model.Transaction, error) {
		return fetched, nil
	}

	var fetcher TransactionFetcher = mock

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	defer func() { _ = store.Close() }()

	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)

	// Fetch and save twice, as a re-import would.
	for range 2 {
		txns, fetchErr := fetcher.GetTransactions(ctx, start, end)
		require.NoError(t, fetchErr)
		require.NoError(t, store.SaveTransactions(ctx, txns))
	}

	require.Len(t, mock.GetTransactionsCalls, 2)
	assert.Equal(t, start, mock.GetTransactionsCalls[0].StartDate)

	saved, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, saved, 2, "re-imported transactions deduplicate by hash")
}
