package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkearns/pay-the-piper/internal/cli"
	"github.com/pkearns/pay-the-piper/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "List and search stored transactions",
		Long: `List stored transactions, newest first.

--search matches a substring against the id, description, bank, and category
columns. Date filters are inclusive and use YYYY-MM-DD.`,
		RunE: runTransactions,
	}

	cmd.Flags().StringP("search", "s", "", "substring to match against transaction fields")
	cmd.Flags().String("bank", "", "only transactions from this account tag")
	cmd.Flags().String("from", "", "earliest date to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "latest date to include (YYYY-MM-DD)")
	cmd.Flags().IntP("limit", "n", 50, "maximum rows to print (0 for all)")

	return cmd
}

func runTransactions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filter, err := transactionFilter(cmd)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	txns, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	if len(txns) == 0 {
		fmt.Println(cli.FormatWarning("No transactions match."))
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %-15s %-40s %-22s %12s\n", "Date", "Bank", "Description", "Category", "Amount")
	for _, txn := range txns {
		category := txn.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(&sb, "%-12s %-15s %-40s %-22s %12.2f\n",
			txn.Date.Format("2006-01-02"),
			txn.Bank,
			truncate(txn.Description, 40),
			truncate(category, 22),
			txn.Amount)
	}
	fmt.Fprintf(&sb, "\n%d transactions", len(txns))

	fmt.Println(cli.RenderBox("Transactions", sb.String()))
	return nil
}

func transactionFilter(cmd *cobra.Command) (service.TransactionFilter, error) {
	var filter service.TransactionFilter

	filter.Search, _ = cmd.Flags().GetString("search")
	filter.Bank, _ = cmd.Flags().GetString("bank")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	if from, _ := cmd.Flags().GetString("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		filter.StartDate = &t
	}

	if to, _ := cmd.Flags().GetString("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		filter.EndDate = &t
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, fmt.Errorf("--to is before --from")
	}

	return filter, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
