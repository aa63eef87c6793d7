package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/money-tracker/internal/cli"
	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/config"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/report"
	"github.com/Veraticus/money-tracker/internal/service"
	"github.com/Veraticus/money-tracker/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reports",
	}

	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Export a period to Google Sheets",
		Long: `Write the summary, monthly statistics, category breakdown and transaction
list of a period to a Google spreadsheet. The monthly statistics cover the
twelve months ending with the period.

Authenticate first with 'money auth sheets' or configure a service account.`,
		RunE: runExportSheets,
	}

	addPeriodFlags(cmd)
	cmd.Flags().String("spreadsheet-id", "", "write into this spreadsheet instead of finding one by name")

	return cmd
}

func runExportSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	period, err := periodFromFlags(cmd, now())
	if err != nil {
		return err
	}

	cfg := config.LoadSheets(viper.GetViper())
	if id, _ := cmd.Flags().GetString("spreadsheet-id"); id != "" {
		cfg.SpreadsheetID = id
	}
	if err := cfg.Validate(); err != nil {
		return common.NewUserError("Google Sheets is not configured, run 'money auth sheets' first", err)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := buildSheetsReport(cmd, a, period)
	if err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}

	url, err := writer.Write(ctx, r)
	if err != nil {
		return err
	}

	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Exported %s (%d transactions)", period.Label, r.TransactionCount)))
	printLine(cmd, cli.SheetIcon+" "+url)
	return nil
}

func buildSheetsReport(cmd *cobra.Command, a *app, period report.Period) (sheets.Report, error) {
	ctx := cmd.Context()

	summary, err := a.reports.Summary(ctx, period)
	if err != nil {
		return sheets.Report{}, err
	}

	monthStart := report.StartOfMonth(period.End.UTC()).AddDate(0, -11, 0)
	monthly, err := a.reports.Monthly(ctx, monthStart, period.End)
	if err != nil {
		return sheets.Report{}, err
	}

	start, end := period.Start, period.End
	txns, err := a.store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return sheets.Report{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	categories, err := a.ledger.Categories(ctx, "")
	if err != nil {
		return sheets.Report{}, err
	}

	balance, exists, err := a.ledger.Balance(ctx)
	if err != nil {
		return sheets.Report{}, err
	}
	var current *model.Balance
	if exists {
		current = &balance
	}

	return sheets.NewReport(summary, monthly, txns, categoryNames(categories), current), nil
}
