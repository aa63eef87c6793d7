package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-tracker/internal/cli"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import statement lines from OFX or QFX files exported from your bank.
Credits become income and debits become expenses, filed under the categories
given with --income-category and --expense-category.

Examples:
  # Preview a statement
  money import-ofx --dry-run ~/Downloads/checking_2024_03.qfx

  # Import several files into chosen categories
  money import-ofx --expense-category Shopping ~/Downloads/card_*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "preview the import without saving")
	cmd.Flags().String("income-category", "Other", "category for credits (name or id)")
	cmd.Flags().String("expense-category", "Other", "category for debits (name or id)")

	return cmd
}

// collectFiles expands glob patterns. A pattern without matches is kept when
// it names an existing file.
func collectFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseFiles reads every file and drops lines already seen in an earlier
// file of the same run. Unreadable files are logged and skipped.
func parseFiles(ctx context.Context, parser *ofx.Parser, files []string) ([]ofx.Record, error) {
	seen := make(map[string]bool)
	var records []ofx.Record

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return records, err
			}
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, rec := range parsed {
			if rec.FITID != "" {
				key := rec.AccountID + "|" + rec.FITID
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			records = append(records, rec)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}

	return records, nil
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	dryRun, _ := flags.GetBool("dry-run")
	incomeFlag, _ := flags.GetString("income-category")
	expenseFlag, _ := flags.GetString("expense-category")

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), !dryRun)
	defer stop()

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	records, err := parseFiles(ctx, ofx.NewParser(), files)
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return err
	}

	if len(records) == 0 {
		printLine(cmd, cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	if dryRun {
		printLine(cmd, previewRecords(records))
		printLine(cmd, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported", len(records))))
		return nil
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	income, err := resolveCategory(ctx, cmd, a.store, model.TypeIncome, incomeFlag)
	if err != nil {
		return err
	}
	expense, err := resolveCategory(ctx, cmd, a.store, model.TypeExpense, expenseFlag)
	if err != nil {
		return err
	}

	bar := cli.NewProgressBar(len(records), "Importing", cmd.ErrOrStderr())
	imported, failed := 0, 0
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}

		categoryID := expense.ID
		if rec.Type == model.TypeIncome {
			categoryID = income.ID
		}

		if _, err := a.ledger.AddTransaction(ctx, rec.Transaction(categoryID)); err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Warn("Skipped transaction", "fitid", rec.FITID, "error", err)
			failed++
		} else {
			imported++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	balance, _, err := a.ledger.Balance(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Imported %d of %d transactions", imported, len(records))))
	if failed > 0 {
		printLine(cmd, cli.FormatWarning(fmt.Sprintf("%d transactions were skipped, see the log", failed)))
	}
	printLine(cmd, cli.FormatInfo("Balance: "+cli.FormatBalance(balance.Amount)))
	return nil
}

// previewLimit caps the dry-run table.
const previewLimit = 20

func previewRecords(records []ofx.Record) string {
	rows := make([][]string, 0, min(len(records), previewLimit))
	for i, rec := range records {
		if i == previewLimit {
			break
		}
		rows = append(rows, []string{
			cli.FormatDate(rec.Date),
			rec.AccountID,
			cli.FormatSigned(rec.Type, rec.Amount),
			rec.Note,
		})
	}
	return cli.RenderTable([]string{"Date", "Account", "Amount", "Note"}, rows)
}
