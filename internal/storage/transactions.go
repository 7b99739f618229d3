package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkearns/pay-the-piper/internal/common"
	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/service"
)

// SaveTransactions saves multiple transactions, deduplicating by hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, date, description, bank, amount, category
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.Date,
			txn.Description,
			txn.Bank,
			txn.Amount,
			nullableString(txn.Category),
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}

	slog.Debug("saved transactions", "count", len(transactions))
	return nil
}

// GetTransactions retrieves transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT t.id, t.hash, t.date, t.description, t.bank, t.amount,
		       COALESCE(t.category, '')
		FROM transactions t
		WHERE 1=1`
	var args []any

	if filter.StartDate != nil {
		query += " AND t.date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND t.date <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.Bank != "" {
		query += " AND t.bank = ?"
		args = append(args, filter.Bank)
	}
	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		query += ` AND (
			LOWER(t.id) LIKE ? OR
			LOWER(t.description) LIKE ? OR
			LOWER(t.bank) LIKE ? OR
			LOWER(COALESCE(t.category, '')) LIKE ?
		)`
		args = append(args, needle, needle, needle, needle)
	}

	query += " ORDER BY t.date DESC, t.id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, hash, date, description, bank, amount, COALESCE(category, '')
		FROM transactions
		WHERE id = ?`, id)

	var txn model.Transaction
	err := row.Scan(&txn.ID, &txn.Hash, &txn.Date, &txn.Description, &txn.Bank, &txn.Amount, &txn.Category)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	return &txn, nil
}

// GetUncategorizedDescriptions returns distinct descriptions of transactions
// with no category assignment from either the dictionary or the transaction
// itself. These are the descriptions the external categorizer still needs to
// see.
func (s *SQLiteStorage) GetUncategorizedDescriptions(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT t.description
		FROM transactions t
		LEFT JOIN category_dictionary d ON d.description = t.description
		WHERE d.category IS NULL AND (t.category IS NULL OR t.category = '')
		ORDER BY t.description`)
	if err != nil {
		return nil, fmt.Errorf("failed to query uncategorized descriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var descriptions []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan description: %w", err)
		}
		descriptions = append(descriptions, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating descriptions: %w", err)
	}

	return descriptions, nil
}

// GetEarliestTransactionDate returns the oldest transaction date.
func (s *SQLiteStorage) GetEarliestTransactionDate(ctx context.Context) (time.Time, error) {
	return s.boundaryDate(ctx, "MIN")
}

// GetLatestTransactionDate returns the newest transaction date.
func (s *SQLiteStorage) GetLatestTransactionDate(ctx context.Context) (time.Time, error) {
	return s.boundaryDate(ctx, "MAX")
}

func (s *SQLiteStorage) boundaryDate(ctx context.Context, fn string) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}

	var date sql.NullTime
	query := fmt.Sprintf("SELECT %s(date) FROM transactions", fn)
	if err := s.db.QueryRowContext(ctx, query).Scan(&date); err != nil {
		return time.Time{}, fmt.Errorf("failed to query transaction dates: %w", err)
	}
	if !date.Valid {
		return time.Time{}, common.ErrNoTransactions
	}

	return date.Time, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	if err := row.Scan(&txn.ID, &txn.Hash, &txn.Date, &txn.Description, &txn.Bank, &txn.Amount, &txn.Category); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return txn, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
