// Package testutil provides test fixtures backed by a real in-memory database.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
	"github.com/Veraticus/money-tracker/internal/storage"
)

// TestDB is a migrated in-memory database plus the categories seeded into it.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	categories map[string]model.Category
}

// Option configures SetupTestDB.
type Option func(*setupOptions)

type setupOptions struct {
	clock      func() time.Time
	categories []model.Category
}

// WithDefaultCategories seeds model.DefaultCategories, flagged as defaults.
func WithDefaultCategories() Option {
	return func(o *setupOptions) {
		for _, cat := range model.DefaultCategories {
			cat.IsDefault = true
			o.categories = append(o.categories, cat)
		}
	}
}

// WithCategory seeds one user category.
func WithCategory(name string, txnType model.TransactionType) Option {
	return func(o *setupOptions) {
		o.categories = append(o.categories, model.Category{Name: name, Type: txnType, Icon: "more_horiz"})
	}
}

// WithClock fixes the storage clock.
func WithClock(now func() time.Time) Option {
	return func(o *setupOptions) {
		o.clock = now
	}
}

// SetupTestDB creates a migrated in-memory database and registers cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.WithCategory("Food", model.TypeExpense),
//		testutil.WithCategory("Salary", model.TypeIncome),
//	)
//	food := db.MustCategory("Food", model.TypeExpense)
func SetupTestDB(t *testing.T, opts ...Option) *TestDB {
	t.Helper()

	var o setupOptions
	for _, opt := range opts {
		opt(&o)
	}

	var storageOpts []storage.Option
	if o.clock != nil {
		storageOpts = append(storageOpts, storage.WithClock(o.clock))
	}

	store, err := storage.NewSQLiteStorage(":memory:", storageOpts...)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{
		Storage:    store,
		t:          t,
		categories: make(map[string]model.Category),
	}
	for _, cat := range o.categories {
		if err := store.CreateCategory(ctx, &cat); err != nil {
			t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
		db.categories[categoryKey(cat.Name, cat.Type)] = cat
	}

	return db
}

func categoryKey(name string, txnType model.TransactionType) string {
	return fmt.Sprintf("%s/%s", txnType, name)
}

// MustCategory returns a seeded category or fails the test.
func (db *TestDB) MustCategory(name string, txnType model.TransactionType) model.Category {
	db.t.Helper()

	cat, ok := db.categories[categoryKey(name, txnType)]
	if !ok {
		db.t.Fatalf("category %s %q was not seeded", txnType, name)
	}
	return cat
}

// MustAddTransaction writes a transaction straight to storage, bypassing the
// balance. Use it for aggregate queries, not for balance assertions.
func (db *TestDB) MustAddTransaction(cat model.Category, amount float64, date time.Time, note string) model.Transaction {
	db.t.Helper()

	txn := model.Transaction{
		Amount:     amount,
		Date:       date,
		CategoryID: cat.ID,
		Type:       cat.Type,
		Note:       note,
	}
	if err := db.Storage.CreateTransaction(context.Background(), &txn); err != nil {
		db.t.Fatalf("failed to add transaction: %v", err)
	}
	return txn
}

// WithTransaction runs fn inside a storage transaction that is always rolled back.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	tx, err := db.Storage.BeginTx(context.Background())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
