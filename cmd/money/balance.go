package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-tracker/internal/cli"
)

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show, set or recompute the running balance",
		RunE:  runShowBalance,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current balance",
		RunE:  runShowBalance,
	})
	cmd.AddCommand(setBalanceCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "recompute",
		Short: "Rebuild the balance from every recorded transaction",
		Long: `Replace the stored balance with the signed sum of all transactions.
This discards any manual override made with 'money balance set'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			balance, err := a.ledger.RecomputeBalance(ctx)
			if err != nil {
				return err
			}

			printLine(cmd, cli.FormatSuccess("Balance recomputed: "+cli.FormatBalance(balance.Amount)))
			return nil
		},
	})

	return cmd
}

func runShowBalance(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	balance, exists, err := a.ledger.Balance(ctx)
	if err != nil {
		return err
	}

	if !exists {
		printLine(cmd, cli.FormatInfo("No balance yet. Add a transaction or run 'money balance set'."))
		return nil
	}

	printLine(cmd, cli.RenderBox(cli.MoneyIcon+" Balance", fmt.Sprintf("%s\nupdated %s",
		cli.FormatBalance(balance.Amount),
		balance.LastUpdated.Local().Format("2006-01-02 15:04"))))
	return nil
}

func setBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <amount>",
		Short: "Override the balance with a known amount",
		Long: `Set the balance to the amount in your account. Later transactions apply on
top of it. A negative amount goes after --:
  money balance set -- -250`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseSignedAmount(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			balance, err := a.ledger.SetBalance(ctx, amount)
			if err != nil {
				return err
			}

			printLine(cmd, cli.FormatSuccess("Balance set to "+cli.FormatBalance(balance.Amount)))
			return nil
		},
	}
}
