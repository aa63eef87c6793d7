// Package ledger keeps the running balance consistent with the stored
// transactions and enforces the category rules. Every mutation runs inside a
// single storage transaction and, once committed, is announced on a
// state.Stream.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
	"github.com/Veraticus/money-tracker/internal/state"
)

// Snapshot is what subscribers observe after each committed change.
type Snapshot struct {
	Balance  model.Balance
	Revision uint64
	Exists   bool
}

// Ledger is the single writer for transactions, categories and the balance.
type Ledger struct {
	store    service.Storage
	updates  *state.Stream[Snapshot]
	now      func() time.Time
	revision uint64
	mu       sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for balance timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates a ledger over store.
func New(store service.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		store:   store,
		updates: state.NewStream[Snapshot](),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Updates returns the stream snapshots are published on.
func (l *Ledger) Updates() *state.Stream[Snapshot] {
	return l.updates
}

// Close ends every subscription to Updates.
func (l *Ledger) Close() {
	l.updates.Close()
}

// Refresh publishes the stored balance without changing anything, so that
// new subscribers have a starting value.
func (l *Ledger) Refresh(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, err := l.store.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("failed to load balance: %w", err)
	}
	l.publish(balance)
	return nil
}

// Balance returns the stored balance. exists is false when no balance has
// ever been recorded, in which case the zero Balance is returned.
func (l *Ledger) Balance(ctx context.Context) (model.Balance, bool, error) {
	balance, err := l.store.GetBalance(ctx)
	if err != nil {
		return model.Balance{}, false, fmt.Errorf("failed to load balance: %w", err)
	}
	if balance == nil {
		return model.Balance{}, false, nil
	}
	return *balance, true, nil
}

// AddTransaction records txn and applies its signed amount to the balance.
func (l *Ledger) AddTransaction(ctx context.Context, txn model.Transaction) (*model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	var balance *model.Balance
	err := l.withTx(ctx, func(tx service.Transaction) error {
		if err := checkCategory(ctx, tx, txn); err != nil {
			return err
		}
		if err := tx.CreateTransaction(ctx, &txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		var err error
		balance, err = l.adjustBalance(ctx, tx, txn.SignedAmount())
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("added transaction",
		"id", txn.ID,
		"type", txn.Type,
		"amount", txn.Amount,
		"balance", balance.Amount)
	l.publish(balance)
	return &txn, nil
}

// UpdateTransaction replaces the stored transaction with txn and moves the
// balance by the difference between the new and the stored signed amounts.
// The stored row is read inside the same storage transaction.
func (l *Ledger) UpdateTransaction(ctx context.Context, txn model.Transaction) (*model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	var balance *model.Balance
	err := l.withTx(ctx, func(tx service.Transaction) error {
		old, err := tx.GetTransactionByID(ctx, txn.ID)
		if err != nil {
			return notFound("transaction", txn.ID, err)
		}
		if err := checkCategory(ctx, tx, txn); err != nil {
			return err
		}

		txn.CreatedAt = old.CreatedAt
		if err := tx.UpdateTransaction(ctx, &txn); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		balance, err = l.adjustBalance(ctx, tx, txn.SignedAmount()-old.SignedAmount())
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("updated transaction", "id", txn.ID, "balance", balance.Amount)
	l.publish(balance)
	return &txn, nil
}

// DeleteTransaction removes a transaction and reverses its effect on the balance.
func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var balance *model.Balance
	err := l.withTx(ctx, func(tx service.Transaction) error {
		old, err := tx.GetTransactionByID(ctx, id)
		if err != nil {
			return notFound("transaction", id, err)
		}
		if err := tx.DeleteTransaction(ctx, id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		balance, err = l.adjustBalance(ctx, tx, -old.SignedAmount())
		return err
	})
	if err != nil {
		return err
	}

	slog.Info("deleted transaction", "id", id, "balance", balance.Amount)
	l.publish(balance)
	return nil
}

// SetBalance overrides the balance with amount regardless of the transactions.
func (l *Ledger) SetBalance(ctx context.Context, amount float64) (model.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return model.Balance{}, common.NewUserError(
			fmt.Sprintf("Balance must be a finite number, got %v", amount),
			common.ErrInvalidInput)
	}

	balance := &model.Balance{Amount: amount, LastUpdated: l.now()}
	if err := l.store.SaveBalance(ctx, balance); err != nil {
		return model.Balance{}, fmt.Errorf("failed to save balance: %w", err)
	}

	slog.Info("balance set manually", "amount", amount)
	l.publish(balance)
	return *balance, nil
}

// RecomputeBalance replaces the balance with total income minus total expense.
// Manual overrides made with SetBalance are discarded.
func (l *Ledger) RecomputeBalance(ctx context.Context) (model.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var balance *model.Balance
	err := l.withTx(ctx, func(tx service.Transaction) error {
		total, err := tx.GetSignedTotal(ctx)
		if err != nil {
			return fmt.Errorf("failed to sum transactions: %w", err)
		}
		balance = &model.Balance{Amount: total, LastUpdated: l.now()}
		if err := tx.SaveBalance(ctx, balance); err != nil {
			return fmt.Errorf("failed to save balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Balance{}, err
	}

	slog.Info("balance recomputed", "amount", balance.Amount)
	l.publish(balance)
	return *balance, nil
}

// adjustBalance adds delta to the stored balance, treating a missing balance as zero.
func (l *Ledger) adjustBalance(ctx context.Context, tx service.Transaction, delta float64) (*model.Balance, error) {
	current, err := tx.GetBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}

	amount := delta
	if current != nil {
		amount += current.Amount
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, common.NewUserError(
			fmt.Sprintf("Balance must be a finite number, got %v", amount),
			common.ErrInvalidInput)
	}

	balance := &model.Balance{Amount: amount, LastUpdated: l.now()}
	if err := tx.SaveBalance(ctx, balance); err != nil {
		return nil, fmt.Errorf("failed to save balance: %w", err)
	}
	return balance, nil
}

func (l *Ledger) withTx(ctx context.Context, fn func(tx service.Transaction) error) error {
	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// publish announces balance. Callers hold l.mu so revisions match commit order.
func (l *Ledger) publish(balance *model.Balance) {
	l.revision++
	snap := Snapshot{Revision: l.revision}
	if balance != nil {
		snap.Balance = *balance
		snap.Exists = true
	}
	l.updates.Publish(snap)
}

func validateTransaction(txn model.Transaction) error {
	if txn.Amount <= 0 || math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
		return common.NewUserError(
			fmt.Sprintf("Amount must be a finite number greater than zero, got %v", txn.Amount),
			common.ErrInvalidAmount)
	}
	if !txn.Type.IsValid() {
		return common.NewUserError(
			fmt.Sprintf("Type must be %q or %q", model.TypeIncome, model.TypeExpense),
			fmt.Errorf("%w: type %q", common.ErrInvalidInput, txn.Type))
	}
	if txn.Date.IsZero() {
		return common.NewUserError("A date is required",
			fmt.Errorf("%w: missing date", common.ErrInvalidInput))
	}
	if txn.CategoryID <= 0 {
		return common.NewUserError("A category is required",
			fmt.Errorf("%w: missing category", common.ErrInvalidInput))
	}
	return nil
}

// checkCategory verifies the category exists and has the transaction's type.
func checkCategory(ctx context.Context, tx service.Transaction, txn model.Transaction) error {
	cat, err := tx.GetCategoryByID(ctx, txn.CategoryID)
	if err != nil {
		return notFound("category", txn.CategoryID, err)
	}
	if cat.Type != txn.Type {
		return common.NewUserError(
			fmt.Sprintf("Category %q is for %s, not %s", cat.Name, cat.Type, txn.Type),
			common.ErrTypeMismatch)
	}
	return nil
}

func notFound(entity string, id int64, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("No %s with ID %d", entity, id), err)
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
