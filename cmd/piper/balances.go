package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkearns/pay-the-piper/internal/cli"
	"github.com/pkearns/pay-the-piper/internal/model"
)

var balanceAccounts = []string{
	model.BalanceChecking,
	model.BalanceSavings,
	model.BalanceMiscCash,
	model.BalanceRetirement,
}

func balancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Account balance snapshots and net worth",
		Long: `Record point-in-time account balances and compute net worth.

Balances are entered manually; net worth combines them with credit-card
activity and any loans configured under networth.loans.`,
	}

	cmd.AddCommand(balancesSetCmd())
	cmd.AddCommand(balancesListCmd())
	cmd.AddCommand(balancesNetWorthCmd())

	return cmd
}

func balancesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <account> <amount>",
		Short: "Record a balance snapshot",
		Long: fmt.Sprintf("Record a balance snapshot for one account.\n\nAccounts: %s",
			strings.Join(balanceAccounts, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			account := strings.ToLower(args[0])
			if !validBalanceAccount(account) {
				return fmt.Errorf("unknown account %q (expected one of: %s)",
					args[0], strings.Join(balanceAccounts, ", "))
			}

			amount, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", ""), 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetBalance(ctx, account, amount); err != nil {
				return fmt.Errorf("failed to save balance: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %s balance: $%.2f", account, amount)))
			return nil
		},
	}
}

func balancesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show recorded balance snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snapshots, err := store.GetBalances(ctx)
			if err != nil {
				return fmt.Errorf("failed to load balances: %w", err)
			}

			if len(snapshots) == 0 {
				fmt.Println(cli.FormatWarning("No balances recorded. Use 'piper balances set'."))
				return nil
			}

			var sb strings.Builder
			for _, snap := range snapshots {
				fmt.Fprintf(&sb, "%-12s $%12.2f   as of %s\n",
					snap.Account, snap.Amount, snap.UpdatedAt.Format("2006-01-02"))
			}
			fmt.Println(cli.RenderBox("Balances", strings.TrimRight(sb.String(), "\n")))
			return nil
		},
	}
}

func balancesNetWorthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networth",
		Short: "Compute net worth",
		Long: `Compute net worth from balance snapshots, credit-card activity, and
configured loans. The credit-card balance is the signed sum of credit-line
transactions; loan balances are principal plus matched payments.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snapshots, err := store.GetBalances(ctx)
			if err != nil {
				return fmt.Errorf("failed to load balances: %w", err)
			}

			classified, _, err := loadClassified(ctx, store)
			if err != nil {
				return err
			}

			loans, err := loansFromConfig()
			if err != nil {
				return err
			}

			nw := reportConfig().ComputeNetWorth(snapshots, classified, loans)

			var sb strings.Builder
			fmt.Fprintf(&sb, "Cash:        $%12.2f\n", nw.TotalCash)
			fmt.Fprintf(&sb, "Retirement:  $%12.2f\n", nw.Retirement)
			fmt.Fprintf(&sb, "Credit card: $%12.2f\n", nw.CreditCardBalance)
			names := make([]string, 0, len(nw.LoanBalances))
			for name := range nw.LoanBalances {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(&sb, "Loan %-8s $%12.2f\n", name+":", nw.LoanBalances[name])
			}
			fmt.Fprintf(&sb, "\nNet worth:   $%12.2f", nw.Total)

			fmt.Println(cli.RenderBox("Net Worth", sb.String()))
			return nil
		},
	}
}

func loansFromConfig() ([]model.Loan, error) {
	var loans []model.Loan
	if err := viper.UnmarshalKey("networth.loans", &loans); err != nil {
		return nil, fmt.Errorf("invalid networth.loans configuration: %w", err)
	}
	for _, loan := range loans {
		if loan.Name == "" || loan.Pattern == "" {
			return nil, fmt.Errorf("networth.loans entries need both name and pattern")
		}
	}
	return loans, nil
}

func validBalanceAccount(account string) bool {
	for _, a := range balanceAccounts {
		if a == account {
			return true
		}
	}
	return false
}
