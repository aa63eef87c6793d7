package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/money-tracker/internal/cli"
	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/insight"
	"github.com/Veraticus/money-tracker/internal/report"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a month or a date range",
		Long: `Show income, expenses, net and the category breakdown for a period,
followed by insights.

Examples:
  money report
  money report --month 2024-03
  money report --from 2024-01-01 --to 2024-03-31 --ai`,
		RunE: runReport,
	}

	addPeriodFlags(cmd)
	cmd.Flags().Bool("ai", false, "generate insights with the configured provider")
	cmd.Flags().Int("top", 5, "number of categories to show per type")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	useAI, _ := cmd.Flags().GetBool("ai")
	top, _ := cmd.Flags().GetInt("top")

	period, err := periodFromFlags(cmd, now())
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.reports.Summary(ctx, period)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Report "+period.Label))
	fmt.Fprintln(out, renderTotals(summary))

	if rows := shareRows(summary.TopExpenses(top)); len(rows) > 0 {
		fmt.Fprintln(out, cli.SubtitleStyle.Render("Expenses by category"))
		fmt.Fprintln(out, cli.RenderTable([]string{"Category", "Count", "Amount", "Share"}, rows))
	}
	incomes := summary.Incomes
	if len(incomes) > top {
		incomes = incomes[:top]
	}
	if rows := shareRows(incomes); len(rows) > 0 {
		fmt.Fprintln(out, cli.SubtitleStyle.Render("Income by category"))
		fmt.Fprintln(out, cli.RenderTable([]string{"Category", "Count", "Amount", "Share"}, rows))
	}

	generator := insight.Disabled()
	if useAI {
		generator = newInsightGenerator()
	}
	lines := generator.Generate(ctx, insight.FromReport(summary))
	fmt.Fprintln(out, renderInsights(lines))
	return nil
}

func renderTotals(s *report.Summary) string {
	return cli.RenderBox(cli.ChartIcon+" Totals", lipgloss.JoinVertical(lipgloss.Left,
		"Income:       "+cli.IncomeStyle.Render(cli.FormatMoney(s.Income)),
		"Expense:      "+cli.ExpenseStyle.Render(cli.FormatMoney(s.Expense)),
		"Net:          "+cli.FormatBalance(s.Net()),
		fmt.Sprintf("Transactions: %d", s.TransactionCount),
	))
}

func shareRows(shares []report.CategoryShare) [][]string {
	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("%d", s.Count),
			cli.FormatMoney(s.Total),
			fmt.Sprintf("%.1f%%", s.Percent),
		})
	}
	return rows
}

func renderInsights(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + line)
	}
	return cli.RenderBox(cli.RobotIcon+" Insights", b.String())
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show income, expense and balance per month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			months, _ := cmd.Flags().GetInt("months")
			if months <= 0 {
				return common.NewUserError("--months must be positive", common.ErrInvalidInput)
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			current := report.MonthOf(now())
			start := current.Start.AddDate(0, -(months - 1), 0)

			stats, err := a.reports.Monthly(ctx, start, current.End)
			if err != nil {
				return err
			}

			if len(stats) == 0 {
				printLine(cmd, cli.FormatInfo("No transactions in the last "+pluralMonths(months)))
				return nil
			}

			rows := make([][]string, 0, len(stats))
			for _, m := range stats {
				rows = append(rows, []string{
					m.Month,
					cli.IncomeStyle.Render(cli.FormatMoney(m.Income)),
					cli.ExpenseStyle.Render(cli.FormatMoney(m.Expense)),
					cli.FormatBalance(m.Balance()),
				})
			}

			printLine(cmd, cli.FormatTitle("Monthly statistics, last "+pluralMonths(months)))
			printLine(cmd, cli.RenderTable([]string{"Month", "Income", "Expense", "Balance"}, rows))
			return nil
		},
	}

	cmd.Flags().IntP("months", "m", 12, "number of months back from the current one")

	return cmd
}

func pluralMonths(n int) string {
	if n == 1 {
		return "month"
	}
	return fmt.Sprintf("%d months", n)
}

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Ask the configured provider for commentary on a period",
		Long: `Generate insights for a period with the configured provider (insights.provider,
default gemini). Without a working provider the rule-based insights are shown.

A free-form question can be asked instead with --prompt:
  money insights --prompt "Give me three tips to save on groceries"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			prompt, _ := cmd.Flags().GetString("prompt")

			generator := newInsightGenerator()

			if prompt != "" {
				printLine(cmd, renderInsights(generator.GenerateCustom(ctx, prompt)))
				return nil
			}

			period, err := periodFromFlags(cmd, now())
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.reports.Summary(ctx, period)
			if err != nil {
				return err
			}

			printLine(cmd, cli.FormatTitle("Insights "+period.Label))
			printLine(cmd, renderInsights(generator.Generate(ctx, insight.FromReport(summary))))
			return nil
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().StringP("prompt", "p", "", "ask a free-form question instead")

	return cmd
}
