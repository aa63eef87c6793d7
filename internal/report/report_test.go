package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
	"github.com/Veraticus/money-tracker/internal/testutil"
)

func TestPeriodHelpers(t *testing.T) {
	ts := time.Date(2024, 2, 17, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 2, 17, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, time.Date(2024, 2, 17, 23, 59, 59, 999_000_000, time.UTC), EndOfDay(ts))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ts))
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999_000_000, time.UTC), EndOfMonth(ts), "leap year")

	p := MonthPeriod(2024, time.December)
	assert.Equal(t, "12/2024", p.Label)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 999_000_000, time.UTC), p.End)
	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.End.Add(time.Millisecond)))
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		input   string
		label   string
		wantErr bool
	}{
		{input: "2024-03", label: "03/2024"},
		{input: "11/2023", label: "11/2023"},
		{input: "March", wantErr: true},
		{input: "2024-13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParseMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.label, p.Label)
		})
	}
}

func TestRangePeriod(t *testing.T) {
	start := time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

	p, err := RangePeriod(start, end)
	require.NoError(t, err)
	assert.Equal(t, "05/03/2024 - 09/03/2024", p.Label)
	assert.Equal(t, StartOfDay(start), p.Start)
	assert.Equal(t, EndOfDay(end), p.End)

	_, err = RangePeriod(end.AddDate(0, 0, 1), start)
	assert.Error(t, err)
}

func TestBuilder_Summary(t *testing.T) {
	db := testutil.SetupTestDB(t,
		testutil.WithCategory("Salary", model.TypeIncome),
		testutil.WithCategory("Food", model.TypeExpense),
		testutil.WithCategory("Rent", model.TypeExpense),
	)
	salary := db.MustCategory("Salary", model.TypeIncome)
	food := db.MustCategory("Food", model.TypeExpense)
	rent := db.MustCategory("Rent", model.TypeExpense)

	db.MustAddTransaction(salary, 4000, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "march pay")
	db.MustAddTransaction(rent, 1500, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), "")
	db.MustAddTransaction(food, 300, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "")
	db.MustAddTransaction(food, 200, time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), "")
	db.MustAddTransaction(food, 999, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "next month")

	summary, err := NewBuilder(db.Storage).Summary(context.Background(), MonthPeriod(2024, time.March))
	require.NoError(t, err)

	assert.Equal(t, 4000.0, summary.Income)
	assert.Equal(t, 2000.0, summary.Expense)
	assert.Equal(t, 2000.0, summary.Net())
	assert.Equal(t, 4, summary.TransactionCount)
	assert.Equal(t, "Rent", summary.TopExpenseCategory)

	require.Len(t, summary.Expenses, 2)
	assert.InDelta(t, 75.0, summary.Expenses[0].Percent, 1e-9)
	assert.InDelta(t, 25.0, summary.Expenses[1].Percent, 1e-9)
	assert.Equal(t, 2, summary.Expenses[1].Count)

	require.Len(t, summary.Incomes, 1)
	assert.InDelta(t, 100.0, summary.Incomes[0].Percent, 1e-9)

	assert.Len(t, summary.TopExpenses(1), 1)
	assert.Len(t, summary.TopExpenses(5), 2)
}

// outsideTxStorage fails every aggregate query made outside a transaction.
type outsideTxStorage struct {
	service.Storage
	begun int
}

func (s *outsideTxStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	s.begun++
	return s.Storage.BeginTx(ctx)
}

func (s *outsideTxStorage) GetTotalByType(context.Context, model.TransactionType, time.Time, time.Time) (float64, error) {
	return 0, errors.New("queried outside the summary transaction")
}

func (s *outsideTxStorage) GetTransactionCount(context.Context, service.TransactionFilter) (int, error) {
	return 0, errors.New("queried outside the summary transaction")
}

func (s *outsideTxStorage) GetCategoryTotals(context.Context, model.TransactionType, time.Time, time.Time) ([]model.CategoryTotal, error) {
	return nil, errors.New("queried outside the summary transaction")
}

func TestBuilder_SummaryReadsOneSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.WithCategory("Food", model.TypeExpense))
	food := db.MustCategory("Food", model.TypeExpense)
	db.MustAddTransaction(food, 12, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), "")

	store := &outsideTxStorage{Storage: db.Storage}
	summary, err := NewBuilder(store).Summary(context.Background(), MonthPeriod(2024, time.March))
	require.NoError(t, err)
	assert.Equal(t, 1, store.begun)
	assert.Equal(t, 12.0, summary.Expense)
	assert.Equal(t, 1, summary.TransactionCount)

	// The read transaction is released, so writes go through afterwards.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, db.Storage.CreateTransaction(ctx, &model.Transaction{
		Amount: 1, Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), CategoryID: food.ID, Type: model.TypeExpense,
	}))
}

func TestBuilder_SummaryEmptyPeriod(t *testing.T) {
	db := testutil.SetupTestDB(t)

	summary, err := NewBuilder(db.Storage).Summary(context.Background(), MonthPeriod(2030, time.January))
	require.NoError(t, err)
	assert.Zero(t, summary.Income)
	assert.Zero(t, summary.Expense)
	assert.Zero(t, summary.TransactionCount)
	assert.Empty(t, summary.TopExpenseCategory)
	assert.Empty(t, summary.Expenses)
}

func TestBuilder_MonthlyAndRecent(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.WithCategory("Food", model.TypeExpense))
	food := db.MustCategory("Food", model.TypeExpense)

	for day := 1; day <= 5; day++ {
		db.MustAddTransaction(food, float64(day), time.Date(2024, 6, day, 12, 0, 0, 0, time.UTC), "")
	}
	db.MustAddTransaction(food, 10, time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC), "")

	b := NewBuilder(db.Storage)
	ctx := context.Background()

	stats, err := b.Monthly(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2024-06", stats[0].Month)
	assert.Equal(t, 15.0, stats[0].Expense)

	recent, err := b.Recent(ctx, MonthPeriod(2024, time.June), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 5.0, recent[0].Amount)
	assert.Equal(t, 4.0, recent[1].Amount)
}

func TestBasicInsights(t *testing.T) {
	tests := []struct {
		name    string
		want    []string
		summary Summary
	}{
		{
			name:    "overspending with a top category",
			summary: Summary{Income: 1000, Expense: 1200, TopExpenseCategory: "Rent"},
			want: []string{
				"Spending is above income - time to rebalance the budget!",
				"Negative balance - review your spending!",
				"Most spent on 'Rent' - that is your main priority!",
			},
		},
		{
			name:    "frugal month",
			summary: Summary{Income: 1000, Expense: 100, TopExpenseCategory: "Food"},
			want: []string{
				"Great saving - your finances are in excellent shape!",
				"A healthy surplus - consider investing some of it!",
				"Most spent on 'Food' - that is your main priority!",
			},
		},
		{
			name:    "tight month",
			summary: Summary{Income: 1000, Expense: 900},
			want: []string{
				"Spending is over 80% of income - tread carefully!",
				"Money left at the end of the month - well managed!",
			},
		},
		{
			name:    "balanced month",
			summary: Summary{Income: 1000, Expense: 600},
			want: []string{
				"Reasonable spending - your finances are well balanced!",
				"Money left at the end of the month - well managed!",
			},
		},
		{
			name:    "no income",
			summary: Summary{},
			want: []string{
				"Great saving - your finances are in excellent shape!",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BasicInsights(tt.summary)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 3)
		})
	}
}
