package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/model"
)

// balanceRowID is the only id the balance table accepts.
const balanceRowID = 1

// GetBalance returns the stored balance, or nil when none has been saved yet.
func (s *SQLiteStorage) GetBalance(ctx context.Context) (*model.Balance, error) {
	return s.getBalanceTx(ctx, s.db)
}

func (s *SQLiteStorage) getBalanceTx(ctx context.Context, q queryable) (*model.Balance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		balance     model.Balance
		lastUpdated int64
	)
	err := q.QueryRowContext(ctx, `SELECT amount, last_updated FROM balance WHERE id = ?`, balanceRowID).
		Scan(&balance.Amount, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query balance: %w", err)
	}

	balance.LastUpdated = fromMillis(lastUpdated)
	return &balance, nil
}

// SaveBalance upserts the singleton balance row. A zero LastUpdated is
// replaced by the storage clock.
func (s *SQLiteStorage) SaveBalance(ctx context.Context, balance *model.Balance) error {
	return s.saveBalanceTx(ctx, s.db, balance)
}

func (s *SQLiteStorage) saveBalanceTx(ctx context.Context, q queryable, balance *model.Balance) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if balance == nil {
		return fmt.Errorf("%w: balance", ErrNilParameter)
	}
	if !isFinite(balance.Amount) {
		return fmt.Errorf("%w: balance must be finite, got %v", common.ErrInvalidInput, balance.Amount)
	}

	if balance.LastUpdated.IsZero() {
		balance.LastUpdated = s.now()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO balance (id, amount, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			last_updated = excluded.last_updated`,
		balanceRowID, balance.Amount, toMillis(balance.LastUpdated))
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

func (t *sqliteTransaction) GetBalance(ctx context.Context) (*model.Balance, error) {
	return t.storage.getBalanceTx(ctx, t.tx)
}

func (t *sqliteTransaction) SaveBalance(ctx context.Context, balance *model.Balance) error {
	return t.storage.saveBalanceTx(ctx, t.tx, balance)
}
