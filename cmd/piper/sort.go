package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkearns/pay-the-piper/internal/cli"
	"github.com/pkearns/pay-the-piper/internal/config"
	"github.com/pkearns/pay-the-piper/internal/ingest"
)

func sortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort downloaded bank exports into the data directory",
		Long: `Move freshly downloaded bank export files from the downloads folder
into the transaction data directory under their canonical names.

Existing files with the same canonical name are overwritten, matching how
banks re-export overlapping date ranges.`,
		RunE: runSort,
	}

	cmd.Flags().String("source", "", "downloads directory (default: ~/Downloads)")
	cmd.Flags().String("dest", "", "data directory (default: ~/.local/share/piper/transactions)")

	_ = viper.BindPFlag("sort.source", cmd.Flags().Lookup("source"))
	_ = viper.BindPFlag("sort.dest", cmd.Flags().Lookup("dest"))

	return cmd
}

func runSort(_ *cobra.Command, _ []string) error {
	sourceDir := viper.GetString("sort.source")
	if sourceDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		sourceDir = filepath.Join(home, "Downloads")
	}
	sourceDir = config.ExpandPath(sourceDir)

	destDir := viper.GetString("sort.dest")
	if destDir == "" {
		destDir = config.DefaultDataDir()
	}
	destDir = config.ExpandPath(destDir)

	sorter := ingest.NewSorter(sourceDir, destDir, ingest.DefaultSortRules())
	moved, err := sorter.Sort()
	if err != nil {
		return fmt.Errorf("failed to sort exports: %w", err)
	}

	if len(moved) == 0 {
		slog.Info(cli.FormatWarning("No bank exports found in " + sourceDir))
		return nil
	}

	for source, dest := range moved {
		slog.Info(cli.FormatSuccess(fmt.Sprintf("%s → %s", source, filepath.Base(dest))))
	}

	return nil
}
