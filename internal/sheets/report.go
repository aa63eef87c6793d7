package sheets

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/report"
)

// amountPlaces is the precision amounts are rounded to on export.
const amountPlaces = 2

func amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(amountPlaces)
}

// NewReport assembles an export from a period summary and its supporting
// data. categories resolves transaction category ids to names; balance may
// be nil when none has been recorded.
func NewReport(
	summary *report.Summary,
	monthly []model.MonthlyStatistic,
	txns []model.Transaction,
	categories map[int64]model.Category,
	balance *model.Balance,
) Report {
	r := Report{
		DateRange:        DateRange{Start: summary.Period.Start, End: summary.Period.End},
		Label:            summary.Period.Label,
		Income:           amount(summary.Income),
		Expense:          amount(summary.Expense),
		TransactionCount: summary.TransactionCount,
	}
	r.Net = r.Income.Sub(r.Expense)

	if balance != nil {
		r.Balance = amount(balance.Amount)
		r.HasBalance = true
	}

	for _, m := range monthly {
		income, expense := amount(m.Income), amount(m.Expense)
		r.Monthly = append(r.Monthly, MonthlyRow{
			Month:   m.Month,
			Income:  income,
			Expense: expense,
			Balance: income.Sub(expense),
		})
	}

	for _, shares := range [][]report.CategoryShare{summary.Expenses, summary.Incomes} {
		for _, s := range shares {
			r.Categories = append(r.Categories, CategoryRow{
				Name:    s.Name,
				Type:    string(s.Type),
				Total:   amount(s.Total),
				Percent: decimal.NewFromFloat(s.Percent).Round(1),
				Count:   s.Count,
			})
		}
	}

	for _, txn := range txns {
		name := "Unknown"
		if cat, ok := categories[txn.CategoryID]; ok {
			name = cat.Name
		}
		r.Transactions = append(r.Transactions, TransactionRow{
			Date:     txn.Date,
			Category: name,
			Type:     string(txn.Type),
			Note:     txn.Note,
			Amount:   amount(txn.Amount),
		})
	}

	return r
}
