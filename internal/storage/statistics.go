package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/money-tracker/internal/model"
)

// GetTotalByType sums one type of transaction over [start, end]. An empty
// range sums to zero.
func (s *SQLiteStorage) GetTotalByType(ctx context.Context, txnType model.TransactionType, start, end time.Time) (float64, error) {
	return s.getTotalByTypeTx(ctx, s.db, txnType, start, end)
}

func (s *SQLiteStorage) getTotalByTypeTx(ctx context.Context, q queryable, txnType model.TransactionType, start, end time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateType(txnType); err != nil {
		return 0, err
	}
	if err := validateDateRange(start, end); err != nil {
		return 0, err
	}

	var total float64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE type = ? AND date BETWEEN ? AND ?`,
		string(txnType), toMillis(start), toMillis(end)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s transactions: %w", txnType, err)
	}
	return total, nil
}

// GetMonthlyStatistics returns one row per UTC calendar month that has
// transactions in [start, end], oldest first.
func (s *SQLiteStorage) GetMonthlyStatistics(ctx context.Context, start, end time.Time) ([]model.MonthlyStatistic, error) {
	return s.getMonthlyStatisticsTx(ctx, s.db, start, end)
}

func (s *SQLiteStorage) getMonthlyStatisticsTx(ctx context.Context, q queryable, start, end time.Time) ([]model.MonthlyStatistic, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT
			strftime('%Y-%m', date / 1000, 'unixepoch') AS month,
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS expense
		FROM transactions
		WHERE date BETWEEN ? AND ?
		GROUP BY month
		ORDER BY month`,
		toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly statistics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []model.MonthlyStatistic
	for rows.Next() {
		var stat model.MonthlyStatistic
		if err := rows.Scan(&stat.Month, &stat.Income, &stat.Expense); err != nil {
			return nil, fmt.Errorf("failed to scan monthly statistic: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly statistics: %w", err)
	}
	return stats, nil
}

// GetCategoryTotals sums one type of transaction per category over
// [start, end], largest total first.
func (s *SQLiteStorage) GetCategoryTotals(ctx context.Context, txnType model.TransactionType, start, end time.Time) ([]model.CategoryTotal, error) {
	return s.getCategoryTotalsTx(ctx, s.db, txnType, start, end)
}

func (s *SQLiteStorage) getCategoryTotalsTx(ctx context.Context, q queryable, txnType model.TransactionType, start, end time.Time) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateType(txnType); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name, c.icon, t.type, SUM(t.amount) AS total, COUNT(*)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.type = ? AND t.date BETWEEN ? AND ?
		GROUP BY c.id
		ORDER BY total DESC, c.name`,
		string(txnType), toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.CategoryTotal
	for rows.Next() {
		var (
			total   model.CategoryTotal
			rowType string
		)
		if err := rows.Scan(&total.CategoryID, &total.Name, &total.Icon, &rowType, &total.Total, &total.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		total.Type = model.TransactionType(rowType)
		totals = append(totals, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}

const signedSum = `COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)`

// GetSignedTotal is all-time income minus all-time expense.
func (s *SQLiteStorage) GetSignedTotal(ctx context.Context) (float64, error) {
	return s.getSignedTotalTx(ctx, s.db)
}

func (s *SQLiteStorage) getSignedTotalTx(ctx context.Context, q queryable) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var total float64
	if err := q.QueryRowContext(ctx, `SELECT `+signedSum+` FROM transactions`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to compute signed total: %w", err)
	}
	return total, nil
}

// GetSignedTotalByCategory is the net balance effect of one category's transactions.
func (s *SQLiteStorage) GetSignedTotalByCategory(ctx context.Context, categoryID int64) (float64, error) {
	return s.getSignedTotalByCategoryTx(ctx, s.db, categoryID)
}

func (s *SQLiteStorage) getSignedTotalByCategoryTx(ctx context.Context, q queryable, categoryID int64) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var total float64
	err := q.QueryRowContext(ctx, `SELECT `+signedSum+` FROM transactions WHERE category_id = ?`, categoryID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute signed total for category %d: %w", categoryID, err)
	}
	return total, nil
}

func (t *sqliteTransaction) GetTotalByType(ctx context.Context, txnType model.TransactionType, start, end time.Time) (float64, error) {
	return t.storage.getTotalByTypeTx(ctx, t.tx, txnType, start, end)
}

func (t *sqliteTransaction) GetMonthlyStatistics(ctx context.Context, start, end time.Time) ([]model.MonthlyStatistic, error) {
	return t.storage.getMonthlyStatisticsTx(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) GetCategoryTotals(ctx context.Context, txnType model.TransactionType, start, end time.Time) ([]model.CategoryTotal, error) {
	return t.storage.getCategoryTotalsTx(ctx, t.tx, txnType, start, end)
}

func (t *sqliteTransaction) GetSignedTotal(ctx context.Context) (float64, error) {
	return t.storage.getSignedTotalTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetSignedTotalByCategory(ctx context.Context, categoryID int64) (float64, error) {
	return t.storage.getSignedTotalByCategoryTx(ctx, t.tx, categoryID)
}
