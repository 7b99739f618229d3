package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pkearns/pay-the-piper/internal/cli"
	"github.com/pkearns/pay-the-piper/internal/model"
)

func overridesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Manage category overrides",
		Long: `Manage the two override stores.

Permanent overrides are keyed by description and apply to every transaction
sharing it. One-off overrides are keyed by transaction ID and apply to
exactly one transaction; they win when both could apply.`,
	}

	cmd.AddCommand(overridesSetCmd())
	cmd.AddCommand(overridesRemoveCmd())
	cmd.AddCommand(overridesListCmd())

	return cmd
}

func overridesSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <description-or-id> <category>",
		Short: "Set an override",
		Args:  cobra.ExactArgs(2),
		RunE:  runOverridesSet,
	}

	cmd.Flags().Bool("one-off", false, "treat the key as a transaction ID instead of a description")

	return cmd
}

func runOverridesSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key, category := args[0], args[1]

	if !model.ValidCategory(category) {
		return fmt.Errorf("unknown category %q; valid categories: %v", category, model.Categories)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	oneOff, _ := cmd.Flags().GetBool("one-off")
	if oneOff {
		if _, err := store.GetTransactionByID(ctx, key); err != nil {
			return fmt.Errorf("no transaction with ID %q: %w", key, err)
		}
		if err := store.SetOneOffOverride(ctx, key, category); err != nil {
			return fmt.Errorf("failed to set one-off override: %w", err)
		}
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Transaction %s → %s", key, category)))
		return nil
	}

	if err := store.SetPermanentOverride(ctx, key, category); err != nil {
		return fmt.Errorf("failed to set permanent override: %w", err)
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("%q → %s", key, category)))
	return nil
}

func overridesRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <description-or-id>",
		Short: "Remove an override",
		Args:  cobra.ExactArgs(1),
		RunE:  runOverridesRemove,
	}

	cmd.Flags().Bool("one-off", false, "treat the key as a transaction ID instead of a description")

	return cmd
}

func runOverridesRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := args[0]

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	oneOff, _ := cmd.Flags().GetBool("one-off")
	if oneOff {
		if err := store.DeleteOneOffOverride(ctx, key); err != nil {
			return fmt.Errorf("failed to remove one-off override: %w", err)
		}
	} else {
		if err := store.DeletePermanentOverride(ctx, key); err != nil {
			return fmt.Errorf("failed to remove permanent override: %w", err)
		}
	}

	slog.Info(cli.FormatSuccess("Override removed: " + key))
	return nil
}

func overridesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all overrides",
		RunE:  runOverridesList,
	}
}

func runOverridesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	permanent, err := store.GetPermanentOverrides(ctx)
	if err != nil {
		return fmt.Errorf("failed to load permanent overrides: %w", err)
	}
	oneOff, err := store.GetOneOffOverrides(ctx)
	if err != nil {
		return fmt.Errorf("failed to load one-off overrides: %w", err)
	}

	if len(permanent) == 0 && len(oneOff) == 0 {
		slog.Info("No overrides defined")
		return nil
	}

	if len(permanent) > 0 {
		slog.Info(cli.FormatTitle("Permanent overrides"))
		for description, category := range permanent {
			slog.Info("override", "description", description, "category", category)
		}
	}

	if len(oneOff) > 0 {
		slog.Info(cli.FormatTitle("One-off overrides"))
		for id, category := range oneOff {
			slog.Info("override", "transaction_id", id, "category", category)
		}
	}

	return nil
}
