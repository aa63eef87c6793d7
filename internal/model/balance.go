package model

import "time"

// Balance is the singleton running total of net funds.
type Balance struct {
	LastUpdated time.Time
	Amount      float64
}

// MonthlyStatistic is the income and expense summed over one calendar month.
type MonthlyStatistic struct {
	Month   string // YYYY-MM
	Income  float64
	Expense float64
}

// Balance returns income minus expense for the month.
func (m MonthlyStatistic) Balance() float64 {
	return m.Income - m.Expense
}

// CategoryTotal is the amount and transaction count of one category over a period.
type CategoryTotal struct {
	Name       string
	Icon       string
	Type       TransactionType
	CategoryID int64
	Total      float64
	Count      int
}
