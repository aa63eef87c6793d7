// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/money-tracker/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// StartDate and EndDate are both inclusive.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Type       model.TransactionType
	CategoryID int64
	Limit      int
	Offset     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionCount(ctx context.Context, filter TransactionFilter) (int, error)

	// Aggregate queries
	GetTotalByType(ctx context.Context, txnType model.TransactionType, start, end time.Time) (float64, error)
	GetMonthlyStatistics(ctx context.Context, start, end time.Time) ([]model.MonthlyStatistic, error)
	GetCategoryTotals(ctx context.Context, txnType model.TransactionType, start, end time.Time) ([]model.CategoryTotal, error)
	GetSignedTotal(ctx context.Context) (float64, error)
	GetSignedTotalByCategory(ctx context.Context, categoryID int64) (float64, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoriesByType(ctx context.Context, txnType model.TransactionType) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	FindCategoryByName(ctx context.Context, name string, txnType model.TransactionType) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CountCategories(ctx context.Context, txnType model.TransactionType) (int, error)

	// Balance operations
	GetBalance(ctx context.Context) (*model.Balance, error)
	SaveBalance(ctx context.Context, balance *model.Balance) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// DateRange represents a time period with inclusive start and end.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
