package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkearns/pay-the-piper/internal/cli"
	"github.com/pkearns/pay-the-piper/internal/llm"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize uncategorized transaction descriptions",
		Long: `Resolve a category for every distinct transaction description that has
no dictionary entry yet, using the configured LLM provider.

Results merge into the category dictionary last-writer-wins; descriptions
the provider fails on stay uncategorized and are surfaced by reports.`,
		RunE: runCategorize,
	}

	cmd.Flags().Int("workers", 4, "concurrent categorization workers")
	cmd.Flags().Bool("dry-run", false, "show what would be categorized without saving")

	return cmd
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	descriptions, err := store.GetUncategorizedDescriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load uncategorized descriptions: %w", err)
	}

	if len(descriptions) == 0 {
		slog.Info(cli.FormatSuccess("Everything is already categorized"))
		return nil
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("Categorizing %d descriptions", len(descriptions))))

	workers, _ := cmd.Flags().GetInt("workers")
	categorizer, err := llm.NewCategorizer(llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		Workers:     workers,
	})
	if err != nil {
		return fmt.Errorf("failed to create categorizer: %w", err)
	}
	defer categorizer.Close()

	bar := progressbar.NewOptions(len(descriptions),
		progressbar.OptionSetDescription("categorizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "█", SaucerPadding: "░", BarStart: "[", BarEnd: "]",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	// Categorize in chunks so the bar moves as batches complete.
	results := make(map[string]string, len(descriptions))
	const chunkSize = 20
	for i := 0; i < len(descriptions); i += chunkSize {
		end := i + chunkSize
		if end > len(descriptions) {
			end = len(descriptions)
		}

		chunk, err := categorizer.CategorizeAll(ctx, descriptions[i:end])
		if err != nil {
			return fmt.Errorf("categorization failed: %w", err)
		}
		for desc, category := range chunk {
			results[desc] = category
		}
		_ = bar.Add(end - i)
	}
	_ = bar.Finish()
	fmt.Println()

	failed := len(descriptions) - len(results)

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		for desc, category := range results {
			slog.Info("would categorize", "description", desc, "category", category)
		}
		return nil
	}

	if len(results) > 0 {
		if err := store.MergeCategoryDictionary(ctx, results); err != nil {
			return fmt.Errorf("failed to update category dictionary: %w", err)
		}
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Categorized %d descriptions", len(results))))
	if failed > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("%d descriptions could not be categorized; they stay uncategorized", failed)))
	}

	return nil
}
