// Package model defines the core domain types of the money tracker.
package model

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType tags a transaction (and a category) as income or expense.
type TransactionType string

const (
	// TypeIncome adds to the balance.
	TypeIncome TransactionType = "income"
	// TypeExpense subtracts from the balance.
	TypeExpense TransactionType = "expense"
)

// ParseTransactionType converts user input into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, nil
	case TypeExpense:
		return TypeExpense, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q: must be %q or %q", s, TypeIncome, TypeExpense)
	}
}

// IsValid reports whether t is one of the known types.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Signed returns the effect an amount of this type has on the balance.
func (t TransactionType) Signed(amount float64) float64 {
	if t == TypeIncome {
		return amount
	}
	return -amount
}

// Transaction is a single recorded income or expense event.
type Transaction struct {
	Date       time.Time
	CreatedAt  time.Time
	Note       string
	Type       TransactionType
	ID         int64
	CategoryID int64
	Amount     float64
}

// SignedAmount is the transaction's effect on the running balance.
func (t Transaction) SignedAmount() float64 {
	return t.Type.Signed(t.Amount)
}
