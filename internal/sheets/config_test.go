package sheets

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkearns/pay-the-piper/internal/model"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid OAuth2 config",
			cfg: Config{
				ClientID:      "id",
				ClientSecret:  "secret",
				RefreshToken:  "token",
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
		},
		{
			name: "valid service account config",
			cfg: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
		},
		{
			name:    "no auth",
			cfg:     Config{BatchSize: 100},
			wantErr: "no authentication method",
		},
		{
			name: "both auth methods",
			cfg: Config{
				ClientID:           "id",
				ClientSecret:       "secret",
				RefreshToken:       "token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
			wantErr: "multiple authentication methods",
		},
		{
			name: "zero batch size",
			cfg: Config{
				ServiceAccountPath: "/path/to/key.json",
			},
			wantErr: "batch size must be positive",
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

func TestLoadFromEnvKeepsConfigFileValues(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-id")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "env-token")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "")

	cfg := DefaultConfig()
	cfg.ClientID = "file-id"

	require.NoError(t, cfg.LoadFromEnv())

	// The config-file value wins; env only fills what was empty.
	assert.Equal(t, "file-id", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "env-token", cfg.RefreshToken)
	assert.Equal(t, "Budget Report", cfg.SpreadsheetName)
}

func TestLoadFromEnvRequiresAuth(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication")
}

func TestPrepareReportData(t *testing.T) {
	w := &Writer{config: DefaultConfig()}

	march := model.Period{
		Start: time.Date(2025, 2, 26, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 26, 0, 0, 0, 0, time.UTC),
	}

	summaries := []model.PeriodSummary{
		{
			Period:     march,
			ByCategory: map[string]float64{"Groceries": 400, "Dining Out": 150},
			Income:     3000,
			Expense:    -550,
			Savings:    500,
		},
	}
	series := []model.SavingsPoint{
		{Period: march, Income: 3000, Expenses: 550, Savings: 2450, SavingsPct: 81.7},
		{Period: march, Income: 0, Expenses: 100, Savings: -100, SavingsPct: math.NaN()},
	}

	values := w.prepareReportData(summaries, series)

	require.NotEmpty(t, values)
	assert.Equal(t, "Budget Report", values[0][0])
	assert.Equal(t, "Savings Rate by Pay Period", values[2][0])

	// Series rows follow the header; NaN is rendered as n/a.
	assert.Equal(t, "March 2025", values[4][0])
	assert.Equal(t, 81.7, values[4][4])
	assert.Equal(t, "n/a", values[5][4])

	// Categories are sorted by amount descending.
	var groceriesRow, diningRow int
	for i, row := range values {
		if len(row) == 2 && row[0] == "Groceries" {
			groceriesRow = i
		}
		if len(row) == 2 && row[0] == "Dining Out" {
			diningRow = i
		}
	}
	require.NotZero(t, groceriesRow)
	require.NotZero(t, diningRow)
	assert.Less(t, groceriesRow, diningRow)
}

func TestMockWriterRecordsCalls(t *testing.T) {
	mock := NewMockWriter()

	err := mock.Write(context.Background(), []model.PeriodSummary{{}}, nil)
	require.NoError(t, err)
	assert.Len(t, mock.GetWriteCalls(), 1)

	mock.SetWriteError(assert.AnError)
	err = mock.Write(context.Background(), nil, nil)
	assert.Error(t, err)

	mock.Reset()
	assert.Empty(t, mock.GetWriteCalls())
}
