package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkearns/pay-the-piper/internal/cli"
	"github.com/pkearns/pay-the-piper/internal/ingest"
	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/plaid"
	"github.com/pkearns/pay-the-piper/internal/simplefin"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank exports, Plaid, or SimpleFIN",
		Long: `Import financial transactions into the local database.

Transactions are deduplicated by content hash, so re-importing the same
export is safe.`,
	}

	cmd.AddCommand(importCSVCmd())
	cmd.AddCommand(importOFXCmd())
	cmd.AddCommand(importPlaidCmd())
	cmd.AddCommand(importSimpleFINCmd())

	return cmd
}

func importCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv <file>...",
		Short: "Import CSV bank exports",
		Long: `Import one or more CSV bank exports.

The format is inferred from the filename (amex.csv, chase-checking.csv,
chase-savings.csv) unless --format is given. Rows with a malformed date or
amount are rejected and reported; they are never silently defaulted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportCSV,
	}

	cmd.Flags().String("format", "", "export format (amex, chase-checking, chase-savings)")

	return cmd
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	formatName, _ := cmd.Flags().GetString("format")

	var total, rejected int
	for _, path := range args {
		format, err := resolveFormat(path, formatName)
		if err != nil {
			return err
		}

		f, err := os.Open(path) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		result, err := ingest.ParseCSV(f, format)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, rowErr := range result.Rejected {
			slog.Warn(cli.FormatWarning(fmt.Sprintf("%s: %v", filepath.Base(path), rowErr)))
		}
		rejected += len(result.Rejected)

		if len(result.Transactions) > 0 {
			if err := store.SaveTransactions(ctx, result.Transactions); err != nil {
				return fmt.Errorf("failed to save transactions from %s: %w", path, err)
			}
		}
		total += len(result.Transactions)

		slog.Info("imported file",
			"file", filepath.Base(path),
			"format", format.Name,
			"transactions", len(result.Transactions),
			"rejected", len(result.Rejected))
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions (%d rows rejected)", total, rejected)))
	return nil
}

func resolveFormat(path, override string) (ingest.CSVFormat, error) {
	name := override
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	format, ok := ingest.FormatByName(name)
	if !ok {
		return ingest.CSVFormat{}, fmt.Errorf("unknown CSV format %q; use --format (amex, chase-checking, chase-savings)", name)
	}
	return format, nil
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx <file>...",
		Short: "Import OFX/QFX statement downloads",
		RunE:  runImportOFX,
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.Flags().String("bank", "", "source-account tag for imported transactions (required)")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	bank, _ := cmd.Flags().GetString("bank")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	parser := ingest.NewOFXParser()

	var total int
	for _, path := range args {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		txns, err := parser.ParseFile(ctx, f, bank)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		if len(txns) > 0 {
			if err := store.SaveTransactions(ctx, txns); err != nil {
				return fmt.Errorf("failed to save transactions from %s: %w", path, err)
			}
		}
		total += len(txns)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", total)))
	return nil
}

func importPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Import transactions from connected Plaid accounts",
		RunE:  runImportPlaid,
	}

	cmd.Flags().StringP("start-date", "s", "", "start date (format: 2006-01-02)")
	cmd.Flags().StringP("end-date", "e", "", "end date (format: 2006-01-02)")
	cmd.Flags().IntP("days", "d", 30, "number of days to import when no dates given")
	cmd.Flags().Bool("list-accounts", false, "list available accounts without importing")
	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")

	return cmd
}

func runImportPlaid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	plaidClient, err := plaid.NewClient(plaidConfigFromViper())
	if err != nil {
		return fmt.Errorf("failed to create Plaid client: %w", err)
	}

	if list, _ := cmd.Flags().GetBool("list-accounts"); list {
		accounts, err := plaidClient.GetAccounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		for _, account := range accounts {
			slog.Info("account", "id", account)
		}
		return nil
	}

	startDate, endDate, err := parseDateRange(cmd)
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("Importing transactions from Plaid"))
	slog.Info("Date range", "start", startDate.Format("2006-01-02"), "end", endDate.Format("2006-01-02"))

	transactions, err := plaidClient.GetTransactions(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Fetched %d transactions", len(transactions))))

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		previewTransactions(transactions)
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if len(transactions) > 0 {
		if err := store.SaveTransactions(ctx, transactions); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", len(transactions))))
	return nil
}

func importSimpleFINCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplefin",
		Short: "Import transactions over the SimpleFIN bridge",
		Long: `Import transactions through a SimpleFIN bridge, for accounts Plaid
cannot reach. The claim token (simplefin.token) is exchanged for an access URL
on first use and the grant is saved, so the token is only needed once. Map
account IDs to bank tags under simplefin.account_banks.`,
		RunE: runImportSimpleFIN,
	}

	cmd.Flags().StringP("start-date", "s", "", "start date (format: 2006-01-02)")
	cmd.Flags().StringP("end-date", "e", "", "end date (format: 2006-01-02)")
	cmd.Flags().IntP("days", "d", 30, "number of days to import when no dates given")
	cmd.Flags().Bool("list-accounts", false, "list available accounts without importing")
	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")

	return cmd
}

func runImportSimpleFIN(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, err := simplefin.NewClient(
		viper.GetString("simplefin.token"),
		viper.GetStringMapString("simplefin.account_banks"))
	if err != nil {
		return fmt.Errorf("failed to create SimpleFIN client: %w", err)
	}

	if list, _ := cmd.Flags().GetBool("list-accounts"); list {
		accounts, err := client.GetAccounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		for _, account := range accounts {
			slog.Info("account", "id", account)
		}
		return nil
	}

	startDate, endDate, err := parseDateRange(cmd)
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("Importing transactions from SimpleFIN"))
	slog.Info("Date range", "start", startDate.Format("2006-01-02"), "end", endDate.Format("2006-01-02"))

	transactions, err := client.GetTransactions(ctx, startDate, endDate)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		previewTransactions(transactions)
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if len(transactions) > 0 {
		if err := store.SaveTransactions(ctx, transactions); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", len(transactions))))
	return nil
}

func plaidConfigFromViper() plaid.Config {
	cfg := plaid.Config{
		ClientID:     viper.GetString("plaid.client_id"),
		Secret:       viper.GetString("plaid.secret"),
		Environment:  viper.GetString("plaid.environment"),
		AccessToken:  viper.GetString("plaid.access_token"),
		AccountBanks: viper.GetStringMapString("plaid.account_banks"),
	}
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}
	return cfg
}

func parseDateRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	startStr, _ := cmd.Flags().GetString("start-date")
	endStr, _ := cmd.Flags().GetString("end-date")
	days, _ := cmd.Flags().GetInt("days")

	endDate := time.Now()
	if endStr != "" {
		var err error
		endDate, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endStr, err)
		}
	}

	startDate := endDate.AddDate(0, 0, -days)
	if startStr != "" {
		var err error
		startDate, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startStr, err)
		}
	}

	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s",
			startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}

	return startDate, endDate, nil
}

func previewTransactions(transactions []model.Transaction) {
	limit := 10
	if len(transactions) < limit {
		limit = len(transactions)
	}
	for _, txn := range transactions[:limit] {
		slog.Info("would import",
			"date", txn.Date.Format("2006-01-02"),
			"description", txn.Description,
			"bank", txn.Bank,
			"amount", fmt.Sprintf("%.2f", txn.Amount))
	}
	if len(transactions) > limit {
		slog.Info("...", "more", len(transactions)-limit)
	}
}
