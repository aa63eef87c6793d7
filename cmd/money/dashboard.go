package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/money-tracker/internal/tui"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive dashboard",
		Long: `Show the balance, the month's totals, top categories, recent transactions
and insights. The view refreshes whenever the balance changes.

Keys: h/l switch months, t jumps to this month, i asks for new insights,
r reloads, ? shows help, q quits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			recent, _ := cmd.Flags().GetInt("recent")

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(ctx, tui.Config{
				Ledger:      a.ledger,
				Reports:     a.reports,
				Storage:     a.store,
				Insights:    newInsightGenerator(),
				Now:         now,
				RecentLimit: recent,
			})
		},
	}

	cmd.Flags().Int("recent", 10, "number of recent transactions to show")

	return cmd
}
