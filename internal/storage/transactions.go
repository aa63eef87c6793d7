package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
)

const transactionColumns = `id, amount, note, date, category_id, type, created_at`

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn       model.Transaction
		note      sql.NullString
		txnType   string
		date      int64
		createdAt int64
	)
	if err := row.Scan(&txn.ID, &txn.Amount, &note, &date, &txn.CategoryID, &txnType, &createdAt); err != nil {
		return model.Transaction{}, err
	}
	txn.Note = note.String
	txn.Type = model.TransactionType(txnType)
	txn.Date = fromMillis(date)
	txn.CreatedAt = fromMillis(createdAt)
	return txn, nil
}

func nullableNote(note string) sql.NullString {
	note = strings.TrimSpace(note)
	return sql.NullString{String: note, Valid: note != ""}
}

// CreateTransaction inserts a transaction and fills in its ID and CreatedAt.
// The balance is not touched here; see the ledger package.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	return s.createTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) createTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = s.now()
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO transactions (amount, note, date, category_id, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		txn.Amount, nullableNote(txn.Note), toMillis(txn.Date), txn.CategoryID,
		string(txn.Type), toMillis(txn.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}
	txn.ID = id
	txn.Date = txn.Date.UTC()

	slog.Debug("created transaction", "id", id, "type", txn.Type, "amount", txn.Amount)
	return nil
}

// GetTransactionByID returns a transaction or common.ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	return s.getTransactionByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionByIDTx(ctx context.Context, q queryable, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	txn, err := scanTransaction(q.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return &txn, nil
}

// UpdateTransaction replaces every field of an existing transaction except CreatedAt.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	return s.updateTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) updateTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, note = ?, date = ?, category_id = ?, type = ?
		WHERE id = ?`,
		txn.Amount, nullableNote(txn.Note), toMillis(txn.Date), txn.CategoryID,
		string(txn.Type), txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", txn.ID, translateError(err))
	}

	return requireAffected(result, "transaction", txn.ID)
}

// DeleteTransaction removes one transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	return s.deleteTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteTransactionTx(ctx context.Context, q queryable, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	return requireAffected(result, "transaction", id)
}

// buildFilter renders a TransactionFilter as a WHERE clause. Date bounds are inclusive.
func buildFilter(filter service.TransactionFilter) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.StartDate != nil && filter.EndDate != nil {
		if err := validateDateRange(*filter.StartDate, *filter.EndDate); err != nil {
			return "", nil, err
		}
	}
	if filter.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, toMillis(*filter.StartDate))
	}
	if filter.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, toMillis(*filter.EndDate))
	}
	if filter.Type != "" {
		if err := validateType(filter.Type); err != nil {
			return "", nil, err
		}
		clauses = append(clauses, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.CategoryID > 0 {
		clauses = append(clauses, "category_id = ?")
		args = append(args, filter.CategoryID)
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// GetTransactions lists transactions newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	return s.getTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getTransactionsTx(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	} else if filter.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetTransactionCount counts the transactions matching filter, ignoring Limit and Offset.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context, filter service.TransactionFilter) (int, error) {
	return s.getTransactionCountTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getTransactionCountTx(ctx context.Context, q queryable, filter service.TransactionFilter) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	where, args, err := buildFilter(filter)
	if err != nil {
		return 0, err
	}

	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Transaction-scoped transaction methods.

func (t *sqliteTransaction) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	return t.storage.createTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	return t.storage.getTransactionByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	return t.storage.updateTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) DeleteTransaction(ctx context.Context, id int64) error {
	return t.storage.deleteTransactionTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	return t.storage.getTransactionsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetTransactionCount(ctx context.Context, filter service.TransactionFilter) (int, error) {
	return t.storage.getTransactionCountTx(ctx, t.tx, filter)
}
