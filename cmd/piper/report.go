package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkearns/pay-the-piper/internal/cli"
	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/payperiod"
	"github.com/pkearns/pay-the-piper/internal/sheets"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Budget reports by pay period",
		Long: `Report income, spending, and savings per pay period.

Each pay period runs payday to payday and is labeled by the month after its
starting payday, so the period beginning on the February 26th paycheck is
"March". Refund-paired transactions are excluded from all totals.`,
		RunE: runReport,
	}

	cmd.Flags().StringP("period", "p", "", `pay period to report (label like "March 2025"; default: all)`)
	cmd.Flags().Bool("split", false, "show the needs/wants/savings split per period")
	cmd.Flags().Bool("savings", false, "show only the savings-rate series")
	cmd.Flags().Bool("export", false, "export the report to Google Sheets")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	classified, uncategorized, err := loadClassified(ctx, store)
	if err != nil {
		return err
	}

	if len(classified) == 0 {
		slog.Info(cli.FormatWarning("No transactions found. Run 'piper import' first."))
		return nil
	}

	sched, err := payperiod.ScheduleFor(classified)
	if err != nil {
		return fmt.Errorf("failed to build pay period schedule: %w", err)
	}

	byPeriod, unassigned := reconciledPeriods(sched, classified)
	cfg := reportConfig()

	periods := sched.Periods()
	if label, _ := cmd.Flags().GetString("period"); label != "" {
		period, ok := sched.PeriodByLabel(label)
		if !ok {
			return fmt.Errorf("no pay period labeled %q in the data", label)
		}
		periods = []model.Period{period}
	}

	if savingsOnly, _ := cmd.Flags().GetBool("savings"); savingsOnly {
		series := cfg.SavingsSeries(sched, flatten(sched, byPeriod))
		printSavingsSeries(series)
		return reportWarnings(uncategorized, unassigned)
	}

	showSplit, _ := cmd.Flags().GetBool("split")

	var summaries []model.PeriodSummary
	for _, period := range periods {
		txns := byPeriod[period.Key()]
		if len(txns) == 0 {
			continue
		}

		summary := cfg.Summarize(period, txns)
		summaries = append(summaries, summary)
		printSummary(summary)

		if showSplit {
			printSplit(cfg.Split(txns))
		}
	}

	if export, _ := cmd.Flags().GetBool("export"); export {
		series := cfg.SavingsSeries(sched, flatten(sched, byPeriod))
		if err := exportToSheets(ctx, summaries, series); err != nil {
			return err
		}
	}

	return reportWarnings(uncategorized, unassigned)
}

func printSummary(summary model.PeriodSummary) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Income:   $%.2f\n", summary.Income)
	fmt.Fprintf(&sb, "Spending: $%.2f\n", math.Abs(summary.Expense))
	fmt.Fprintf(&sb, "Savings:  $%.2f\n", summary.Savings)
	if summary.Ignored > 0 {
		fmt.Fprintf(&sb, "Refund-paired: %d transactions excluded\n", summary.Ignored)
	}

	if len(summary.ByCategory) > 0 {
		sb.WriteString("\n")
		categories := make([]string, 0, len(summary.ByCategory))
		for category := range summary.ByCategory {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool {
			return summary.ByCategory[categories[i]] > summary.ByCategory[categories[j]]
		})
		for _, category := range categories {
			fmt.Fprintf(&sb, "%-26s $%.2f\n", category, summary.ByCategory[category])
		}
	}

	fmt.Println(cli.RenderBox(summary.Period.Label(), strings.TrimRight(sb.String(), "\n")))
}

func printSplit(split model.BucketSplit) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Needs:   $%.2f\n", split.Totals[model.BucketNeeds])
	fmt.Fprintf(&sb, "Wants:   $%.2f\n", split.Totals[model.BucketWants])
	fmt.Fprintf(&sb, "Savings: $%.2f", split.Totals[model.BucketSavings])

	fmt.Println(cli.RenderBox("50/30/20 Split", sb.String()))

	if len(split.Unmapped) > 0 {
		slog.Warn(cli.FormatWarning("Categories without a bucket: " + strings.Join(split.Unmapped, ", ")))
	}
}

func printSavingsSeries(series []model.SavingsPoint) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s %12s %12s %12s %10s\n", "Period", "Income", "Expenses", "Savings", "Rate")
	for _, point := range series {
		rate := "n/a"
		if !math.IsNaN(point.SavingsPct) {
			rate = fmt.Sprintf("%.1f%%", point.SavingsPct)
		}
		fmt.Fprintf(&sb, "%-16s %12.2f %12.2f %12.2f %10s\n",
			point.Period.Label(), point.Income, point.Expenses, point.Savings, rate)
	}

	fmt.Println(cli.RenderBox("Savings Rate", strings.TrimRight(sb.String(), "\n")))
}

func exportToSheets(ctx context.Context, summaries []model.PeriodSummary, series []model.SavingsPoint) error {
	sheetsConfig, err := sheetsConfigFromViper()
	if err != nil {
		return fmt.Errorf("sheets export not configured: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, sheetsConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	if err := writer.Write(ctx, summaries, series); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	slog.Info(cli.FormatSuccess("Report exported to Google Sheets"))
	return nil
}

// sheetsConfigFromViper builds the export config from the config file, with
// GOOGLE_SHEETS_* environment variables as fallback for anything unset.
func sheetsConfigFromViper() (sheets.Config, error) {
	cfg := sheets.DefaultConfig()
	cfg.ClientID = viper.GetString("sheets.client_id")
	cfg.ClientSecret = viper.GetString("sheets.client_secret")
	cfg.RefreshToken = viper.GetString("sheets.refresh_token")
	cfg.ServiceAccountPath = viper.GetString("sheets.service_account_path")
	cfg.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	cfg.SpreadsheetName = viper.GetString("sheets.spreadsheet_name")

	if cfg.ServiceAccountPath == "" && (cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "") {
		if err := cfg.LoadFromEnv(); err != nil {
			return cfg, err
		}
	}
	if cfg.SpreadsheetName == "" {
		cfg.SpreadsheetName = "Budget Report"
	}

	return cfg, cfg.Validate()
}

func reportWarnings(uncategorized, unassigned []model.Transaction) error {
	if len(uncategorized) > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf(
			"%d transactions are uncategorized; run 'piper categorize' or set overrides", len(uncategorized))))
		limit := 5
		if len(uncategorized) < limit {
			limit = len(uncategorized)
		}
		for _, txn := range uncategorized[:limit] {
			slog.Warn("uncategorized",
				"id", txn.ID,
				"date", txn.Date.Format("2006-01-02"),
				"description", txn.Description)
		}
	}

	if len(unassigned) > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf(
			"%d transactions fall outside the pay period schedule", len(unassigned))))
	}

	return nil
}
