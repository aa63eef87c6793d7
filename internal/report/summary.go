package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
)

// CategoryShare is a category total with its share of the period's total for that type.
type CategoryShare struct {
	model.CategoryTotal
	Percent float64
}

// Summary describes one period.
type Summary struct {
	Period             Period
	TopExpenseCategory string
	Expenses           []CategoryShare
	Incomes            []CategoryShare
	Income             float64
	Expense            float64
	TransactionCount   int
}

// Net is income minus expense over the period.
func (s Summary) Net() float64 {
	return s.Income - s.Expense
}

// TopExpenses returns at most n expense categories, largest first.
func (s Summary) TopExpenses(n int) []CategoryShare {
	if n >= len(s.Expenses) {
		return s.Expenses
	}
	return s.Expenses[:n]
}

// Builder computes summaries from storage.
type Builder struct {
	store service.Storage
}

// NewBuilder creates a report builder over store.
func NewBuilder(store service.Storage) *Builder {
	return &Builder{store: store}
}

// Summary gathers totals, counts and category breakdowns for period. The
// queries share one storage transaction so that they all see the same
// snapshot, and run concurrently within it.
func (b *Builder) Summary(ctx context.Context, period Period) (*Summary, error) {
	tx, err := b.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin summary read: %w", err)
	}
	// Nothing is written, so the transaction is always rolled back.
	defer func() { _ = tx.Rollback() }()

	summary := &Summary{Period: period}
	start, end := period.Start, period.End

	var (
		expenseTotals []model.CategoryTotal
		incomeTotals  []model.CategoryTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := tx.GetTotalByType(gctx, model.TypeIncome, start, end)
		if err != nil {
			return fmt.Errorf("failed to total income: %w", err)
		}
		summary.Income = total
		return nil
	})
	g.Go(func() error {
		total, err := tx.GetTotalByType(gctx, model.TypeExpense, start, end)
		if err != nil {
			return fmt.Errorf("failed to total expenses: %w", err)
		}
		summary.Expense = total
		return nil
	})
	g.Go(func() error {
		count, err := tx.GetTransactionCount(gctx, service.TransactionFilter{
			StartDate: &start,
			EndDate:   &end,
		})
		if err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}
		summary.TransactionCount = count
		return nil
	})
	g.Go(func() error {
		totals, err := tx.GetCategoryTotals(gctx, model.TypeExpense, start, end)
		if err != nil {
			return fmt.Errorf("failed to break down expenses: %w", err)
		}
		expenseTotals = totals
		return nil
	})
	g.Go(func() error {
		totals, err := tx.GetCategoryTotals(gctx, model.TypeIncome, start, end)
		if err != nil {
			return fmt.Errorf("failed to break down income: %w", err)
		}
		incomeTotals = totals
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Expenses = shares(expenseTotals)
	summary.Incomes = shares(incomeTotals)
	if len(summary.Expenses) > 0 {
		summary.TopExpenseCategory = summary.Expenses[0].Name
	}

	return summary, nil
}

func shares(totals []model.CategoryTotal) []CategoryShare {
	var sum float64
	for _, t := range totals {
		sum += t.Total
	}

	out := make([]CategoryShare, 0, len(totals))
	for _, t := range totals {
		share := CategoryShare{CategoryTotal: t}
		if sum > 0 {
			share.Percent = t.Total / sum * 100
		}
		out = append(out, share)
	}
	return out
}

// Monthly returns per-month income and expense between start and end.
func (b *Builder) Monthly(ctx context.Context, start, end time.Time) ([]model.MonthlyStatistic, error) {
	stats, err := b.store.GetMonthlyStatistics(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly statistics: %w", err)
	}
	return stats, nil
}

// Recent returns the newest transactions in period, at most limit of them.
func (b *Builder) Recent(ctx context.Context, period Period, limit int) ([]model.Transaction, error) {
	start, end := period.Start, period.End
	txns, err := b.store.GetTransactions(ctx, service.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txns, nil
}
