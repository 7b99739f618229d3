package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// GetCategoryDictionary returns the full description to category mapping
// written by the external categorizer.
func (s *SQLiteStorage) GetCategoryDictionary(ctx context.Context) (map[string]string, error) {
	return s.readKV(ctx, "category_dictionary", "description")
}

// MergeCategoryDictionary upserts entries into the dictionary. Each key is
// written independently (last writer wins per key) so concurrently-discovered
// categories are never lost to a wholesale overwrite.
func (s *SQLiteStorage) MergeCategoryDictionary(ctx context.Context, entries map[string]string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO category_dictionary (description, category, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(description) DO UPDATE SET
			category = excluded.category,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for description, category := range entries {
		if _, err := stmt.ExecContext(ctx, description, category); err != nil {
			return fmt.Errorf("failed to upsert dictionary entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dictionary merge: %w", err)
	}

	slog.Debug("merged category dictionary", "entries", len(entries))
	return nil
}

// GetPermanentOverrides returns the description to category override map.
func (s *SQLiteStorage) GetPermanentOverrides(ctx context.Context) (map[string]string, error) {
	return s.readKV(ctx, "permanent_overrides", "description")
}

// SetPermanentOverride stores a category correction for every transaction
// sharing the description.
func (s *SQLiteStorage) SetPermanentOverride(ctx context.Context, description, category string) error {
	return s.writeKV(ctx, "permanent_overrides", "description", description, category)
}

// DeletePermanentOverride removes a permanent override.
func (s *SQLiteStorage) DeletePermanentOverride(ctx context.Context, description string) error {
	return s.deleteKV(ctx, "permanent_overrides", "description", description)
}

// GetOneOffOverrides returns the transaction-id to category override map.
func (s *SQLiteStorage) GetOneOffOverrides(ctx context.Context) (map[string]string, error) {
	return s.readKV(ctx, "one_off_overrides", "transaction_id")
}

// SetOneOffOverride stores a category correction for exactly one transaction.
func (s *SQLiteStorage) SetOneOffOverride(ctx context.Context, transactionID, category string) error {
	return s.writeKV(ctx, "one_off_overrides", "transaction_id", transactionID, category)
}

// DeleteOneOffOverride removes a one-off override.
func (s *SQLiteStorage) DeleteOneOffOverride(ctx context.Context, transactionID string) error {
	return s.deleteKV(ctx, "one_off_overrides", "transaction_id", transactionID)
}

func (s *SQLiteStorage) readKV(ctx context.Context, table, keyColumn string) (map[string]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s, category FROM %s", keyColumn, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]string)
	for rows.Next() {
		var key, category string
		if err := rows.Scan(&key, &category); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		result[key] = category
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}

	return result, nil
}

func (s *SQLiteStorage) writeKV(ctx context.Context, table, keyColumn, key, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, keyColumn); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, category, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(%s) DO UPDATE SET
			category = excluded.category,
			updated_at = CURRENT_TIMESTAMP
	`, table, keyColumn, keyColumn)

	if _, err := s.db.ExecContext(ctx, query, key, category); err != nil {
		return fmt.Errorf("failed to write %s: %w", table, err)
	}
	return nil
}

func (s *SQLiteStorage) deleteKV(ctx context.Context, table, keyColumn, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, keyColumn); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, keyColumn)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}
