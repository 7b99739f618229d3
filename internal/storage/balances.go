package storage

import (
	"context"
	"fmt"

	"github.com/pkearns/pay-the-piper/internal/model"
)

// GetBalances returns all balance snapshots.
func (s *SQLiteStorage) GetBalances(ctx context.Context) ([]model.BalanceSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account, amount, updated_at
		FROM balances
		ORDER BY account`)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []model.BalanceSnapshot
	for rows.Next() {
		var snap model.BalanceSnapshot
		if err := rows.Scan(&snap.Account, &snap.Amount, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}

	return snapshots, nil
}

// SetBalance stores a point-in-time balance for an account.
func (s *SQLiteStorage) SetBalance(ctx context.Context, account string, amount float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(account, "account"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balances (account, amount, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account) DO UPDATE SET
			amount = excluded.amount,
			updated_at = CURRENT_TIMESTAMP
	`, account, amount)
	if err != nil {
		return fmt.Errorf("failed to write balance: %w", err)
	}
	return nil
}
