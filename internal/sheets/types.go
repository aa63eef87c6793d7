package sheets

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRow is one line of the transaction list.
type TransactionRow struct {
	Date     time.Time
	Category string
	Type     string
	Note     string
	Amount   decimal.Decimal
}

// MonthlyRow is one month of income and expense.
type MonthlyRow struct {
	Month   string // YYYY-MM
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// CategoryRow is one line of the category breakdown.
type CategoryRow struct {
	Name    string
	Type    string
	Total   decimal.Decimal
	Percent decimal.Decimal
	Count   int
}

// Report holds everything exported for one period.
type Report struct {
	DateRange        DateRange
	Label            string
	Income           decimal.Decimal
	Expense          decimal.Decimal
	Net              decimal.Decimal
	Balance          decimal.Decimal
	Monthly          []MonthlyRow
	Categories       []CategoryRow
	Transactions     []TransactionRow
	TransactionCount int
	HasBalance       bool
}

// DateRange represents the time period covered by the report.
type DateRange struct {
	Start time.Time
	End   time.Time
}
