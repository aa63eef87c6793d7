package model

import "time"

// Category classifies transactions as income or expense.
type Category struct {
	CreatedAt time.Time
	Name      string
	Icon      string // symbolic icon name or a URI to a user-picked image
	Type      TransactionType
	ID        int64
	IsDefault bool
}

// DefaultCategories are seeded on first run. They cannot be edited or deleted.
var DefaultCategories = []Category{
	{Name: "Food & Drinks", Type: TypeExpense, Icon: "restaurant"},
	{Name: "Transportation", Type: TypeExpense, Icon: "directions_car"},
	{Name: "Shopping", Type: TypeExpense, Icon: "shopping_cart"},
	{Name: "Entertainment", Type: TypeExpense, Icon: "movie"},
	{Name: "Bills", Type: TypeExpense, Icon: "receipt"},
	{Name: "Health", Type: TypeExpense, Icon: "local_hospital"},
	{Name: "Education", Type: TypeExpense, Icon: "school"},
	{Name: "Travel", Type: TypeExpense, Icon: "flight"},
	{Name: "Gifts", Type: TypeExpense, Icon: "card_giftcard"},
	{Name: "Other", Type: TypeExpense, Icon: "more_horiz"},
	{Name: "Salary", Type: TypeIncome, Icon: "work"},
	{Name: "Bonus", Type: TypeIncome, Icon: "stars"},
	{Name: "Investment", Type: TypeIncome, Icon: "trending_up"},
	{Name: "Gifts", Type: TypeIncome, Icon: "card_giftcard"},
	{Name: "Other", Type: TypeIncome, Icon: "more_horiz"},
}
