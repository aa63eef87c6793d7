package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/money-tracker/internal/cli"
	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/report"
	"github.com/Veraticus/money-tracker/internal/service"
)

// addPeriodFlags registers --month, --from and --to on cmd.
func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("month", "", "month to show (YYYY-MM or MM/YYYY, default: current month)")
	cmd.Flags().String("from", "", "start date of a custom range (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date of a custom range (YYYY-MM-DD, default: today)")
}

// periodFromFlags resolves the period selected by addPeriodFlags. A month
// and a custom range are mutually exclusive.
func periodFromFlags(cmd *cobra.Command, now time.Time) (report.Period, error) {
	month, _ := cmd.Flags().GetString("month")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	switch {
	case month != "" && (from != "" || to != ""):
		return report.Period{}, common.NewUserError("use either --month or --from/--to, not both", common.ErrInvalidInput)
	case month != "":
		p, err := report.ParseMonth(month)
		if err != nil {
			return report.Period{}, common.NewUserError(err.Error(), common.ErrInvalidInput)
		}
		return p, nil
	case from != "" || to != "":
		start := report.StartOfMonth(now)
		if from != "" {
			parsed, err := cli.ParseDate(from, now)
			if err != nil {
				return report.Period{}, common.NewUserError(err.Error(), common.ErrInvalidInput)
			}
			start = parsed
		}
		end := now
		if to != "" {
			parsed, err := cli.ParseDate(to, now)
			if err != nil {
				return report.Period{}, common.NewUserError(err.Error(), common.ErrInvalidInput)
			}
			end = parsed
		}
		p, err := report.RangePeriod(start.UTC(), end.UTC())
		if err != nil {
			return report.Period{}, common.NewUserError(err.Error(), common.ErrInvalidInput)
		}
		return p, nil
	default:
		return report.MonthOf(now), nil
	}
}

// resolveCategory finds a category of txnType by id or case-insensitive name.
// An empty value asks the user to pick one.
func resolveCategory(ctx context.Context, cmd *cobra.Command, store service.Storage, txnType model.TransactionType, value string) (*model.Category, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return chooseCategory(ctx, cmd, store, txnType)
	}

	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		cat, err := store.GetCategoryByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.NewUserError(fmt.Sprintf("category %d not found", id), err)
			}
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		if cat.Type != txnType {
			return nil, common.NewUserError(
				fmt.Sprintf("category %q is an %s category, not %s", cat.Name, cat.Type, txnType),
				common.ErrTypeMismatch)
		}
		return cat, nil
	}

	cat, err := store.FindCategoryByName(ctx, value, txnType)
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if cat == nil {
		return nil, common.NewUserError(fmt.Sprintf("no %s category named %q", txnType, value), common.ErrNotFound)
	}
	return cat, nil
}

func chooseCategory(ctx context.Context, cmd *cobra.Command, store service.Storage, txnType model.TransactionType) (*model.Category, error) {
	categories, err := store.GetCategoriesByType(ctx, txnType)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, common.NewUserError(
			fmt.Sprintf("no %s categories yet, add one with 'money categories add'", txnType),
			common.ErrNotFound)
	}

	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}

	idx, err := newPrompter(cmd).Choose(ctx, "Category", names)
	if err != nil {
		return nil, err
	}
	return &categories[idx], nil
}

// prompters holds one prompter per input stream so that answers buffered by
// one question are not lost to the next.
var prompters sync.Map

func newPrompter(cmd *cobra.Command) *cli.Prompter {
	in := cmd.InOrStdin()
	if p, ok := prompters.Load(in); ok {
		return p.(*cli.Prompter)
	}
	p, _ := prompters.LoadOrStore(in, cli.NewPrompter(in, cmd.OutOrStdout()))
	return p.(*cli.Prompter)
}

// parseID reads a positive numeric id argument.
func parseID(arg, entity string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid %s id %q", entity, arg), common.ErrInvalidInput)
	}
	return id, nil
}

// parseAmount reads a transaction amount, accepting thousands separators.
// The ledger rejects amounts that are not positive.
func parseAmount(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, common.NewUserError(fmt.Sprintf("invalid amount %q", s), common.ErrInvalidAmount)
	}
	return amount, nil
}

// parseSignedAmount is parseAmount for balances, which may be negative.
func parseSignedAmount(s string) (float64, error) {
	amount, err := parseAmount(s)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("invalid balance %q", s), common.ErrInvalidInput)
	}
	return amount, nil
}

// categoryNames indexes categories by id.
func categoryNames(categories []model.Category) map[int64]model.Category {
	byID := make(map[int64]model.Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}
	return byID
}

func categoryLabel(byID map[int64]model.Category, id int64) string {
	if cat, ok := byID[id]; ok {
		return cat.Name
	}
	return "Unknown"
}

func printLine(cmd *cobra.Command, a ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), a...)
}
