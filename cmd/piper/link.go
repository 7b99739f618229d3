package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkearns/pay-the-piper/internal/cli"
	"github.com/pkearns/pay-the-piper/internal/plaid"
)

func linkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link",
		Short: "Link a bank account through Plaid",
		Long: `Link a bank account through Plaid.

Creates a link token, walks you through the Plaid Link flow, and exchanges the
resulting public token for an access token. Put the access token in your config
as plaid.access_token, then map account IDs to bank tags under
plaid.account_banks.`,
		RunE: runLink,
	}
}

func runLink(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := plaidConfigFromViper()
	cfg.AccessToken = "" // Link always starts fresh

	client, err := plaid.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create plaid client: %w", err)
	}

	linkToken, err := client.CreateLinkToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to create link token: %w", err)
	}

	fmt.Println(cli.RenderBox("Plaid Link", strings.Join([]string{
		"1. Open https://cdn.plaid.com/link/v2/stable/link.html",
		"   with this link token:",
		"",
		"   " + linkToken,
		"",
		"2. Complete the flow and copy the public token it returns.",
	}, "\n")))

	fmt.Print("Public token: ")
	reader := bufio.NewReader(os.Stdin)
	publicToken, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read public token: %w", err)
	}
	publicToken = strings.TrimSpace(publicToken)
	if publicToken == "" {
		return fmt.Errorf("no public token provided")
	}

	accessToken, itemID, err := client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return fmt.Errorf("failed to exchange public token: %w", err)
	}

	fmt.Println(cli.FormatSuccess("Account linked"))
	fmt.Printf("  item ID:      %s\n", itemID)
	fmt.Printf("  access token: %s\n", accessToken)
	fmt.Println("\nAdd to your config file:")
	fmt.Printf("  plaid:\n    access_token: %s\n", accessToken)

	return nil
}
