// Package ingest reads bank and credit-card transaction exports into the
// domain model.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pkearns/pay-the-piper/internal/common"
	"github.com/pkearns/pay-the-piper/internal/model"
)

// CSVFormat describes one institution's export layout.
type CSVFormat struct {
	Name        string
	Bank        string // Source-account tag stamped on every transaction
	DateColumn  string
	DescColumn  string
	AmountColumn string
	IDColumn    string // Optional; when empty the ID is derived from the row hash
	FlipSign    bool   // AMEX exports debits as positive
}

// Built-in formats matching the supported exports.
var (
	// ChaseChecking matches Chase checking account activity exports.
	ChaseChecking = CSVFormat{
		Name:         "chase-checking",
		Bank:         "chase-checking",
		DateColumn:   "Posting Date",
		DescColumn:   "Description",
		AmountColumn: "Amount",
	}

	// ChaseSavings matches Chase savings account activity exports.
	ChaseSavings = CSVFormat{
		Name:         "chase-savings",
		Bank:         "chase-savings",
		DateColumn:   "Posting Date",
		DescColumn:   "Description",
		AmountColumn: "Amount",
	}

	// Amex matches American Express activity exports, which record charges
	// as positive amounts.
	Amex = CSVFormat{
		Name:         "amex",
		Bank:         "amex",
		DateColumn:   "Date",
		DescColumn:   "Description",
		AmountColumn: "Amount",
		FlipSign:     true,
	}
)

// FormatByName returns a built-in format.
func FormatByName(name string) (CSVFormat, bool) {
	switch name {
	case ChaseChecking.Name:
		return ChaseChecking, true
	case ChaseSavings.Name:
		return ChaseSavings, true
	case Amex.Name:
		return Amex, true
	}
	return CSVFormat{}, false
}

// RowError records a rejected row for the error report. Rows with a missing
// or malformed date or amount are rejected, never defaulted.
type RowError struct {
	Err  error
	Line int
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Result holds parsed transactions plus the rejected-row report.
type Result struct {
	Transactions []model.Transaction
	Rejected     []RowError
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
}

// ParseCSV reads one export file. A missing required column is fatal;
// malformed rows are collected into the result's error report.
func ParseCSV(reader io.Reader, format CSVFormat) (*Result, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1 // Chase pads some rows with trailing fields

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	required := []string{format.DateColumn, format.DescColumn, format.AmountColumn}
	if format.IDColumn != "" {
		required = append(required, format.IDColumn)
	}
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%w: %q (%s format)", common.ErrMissingColumn, col, format.Name)
		}
	}

	result := &Result{}
	line := 1

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Rejected = append(result.Rejected, RowError{Line: line, Err: err})
			continue
		}

		txn, err := parseRow(record, columns, format)
		if err != nil {
			result.Rejected = append(result.Rejected, RowError{Line: line, Err: err})
			continue
		}

		result.Transactions = append(result.Transactions, txn)
	}

	if len(result.Rejected) > 0 {
		slog.Warn("rejected malformed rows",
			"format", format.Name,
			"rejected", len(result.Rejected),
			"accepted", len(result.Transactions))
	}

	return result, nil
}

func parseRow(record []string, columns map[string]int, format CSVFormat) (model.Transaction, error) {
	field := func(col string) (string, error) {
		idx := columns[col]
		if idx >= len(record) {
			return "", fmt.Errorf("%w: missing field %q", common.ErrBadRow, col)
		}
		return strings.TrimSpace(record[idx]), nil
	}

	dateStr, err := field(format.DateColumn)
	if err != nil {
		return model.Transaction{}, err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: bad date %q: %v", common.ErrBadRow, dateStr, err)
	}

	description, err := field(format.DescColumn)
	if err != nil {
		return model.Transaction{}, err
	}
	if description == "" {
		return model.Transaction{}, fmt.Errorf("%w: empty description", common.ErrBadRow)
	}

	amountStr, err := field(format.AmountColumn)
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := parseAmount(amountStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: bad amount %q: %v", common.ErrBadRow, amountStr, err)
	}
	if format.FlipSign {
		amount = -amount
	}

	txn := model.Transaction{
		Date:        date,
		Description: description,
		Bank:        format.Bank,
		Amount:      amount,
	}
	txn.Hash = txn.GenerateHash()

	if format.IDColumn != "" {
		id, err := field(format.IDColumn)
		if err != nil {
			return model.Transaction{}, err
		}
		if id == "" {
			return model.Transaction{}, fmt.Errorf("%w: empty transaction id", common.ErrBadRow)
		}
		txn.ID = id
	} else {
		// Exports without an identifier column get a stable, content-derived ID.
		txn.ID = fmt.Sprintf("%s-%s", format.Bank, txn.Hash[:12])
	}

	return txn, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	return strconv.ParseFloat(s, 64)
}
