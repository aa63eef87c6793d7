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
)

const categoryColumns = `id, name, type, icon, is_default, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat       model.Category
		catType   string
		createdAt int64
	)
	if err := row.Scan(&cat.ID, &cat.Name, &catType, &cat.Icon, &cat.IsDefault, &createdAt); err != nil {
		return model.Category{}, err
	}
	cat.Type = model.TransactionType(catType)
	cat.CreatedAt = fromMillis(createdAt)
	return cat, nil
}

func queryCategories(ctx context.Context, q queryable, query string, args ...any) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetCategories returns every category, expenses first, then by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	return s.getCategoriesTx(ctx, s.db)
}

func (s *SQLiteStorage) getCategoriesTx(ctx context.Context, q queryable) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	categories, err := queryCategories(ctx, q, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY type, name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoriesByType returns the categories of one type ordered by name.
func (s *SQLiteStorage) GetCategoriesByType(ctx context.Context, txnType model.TransactionType) ([]model.Category, error) {
	return s.getCategoriesByTypeTx(ctx, s.db, txnType)
}

func (s *SQLiteStorage) getCategoriesByTypeTx(ctx context.Context, q queryable, txnType model.TransactionType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateType(txnType); err != nil {
		return nil, err
	}

	return queryCategories(ctx, q, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE type = ?
		ORDER BY name COLLATE NOCASE`, string(txnType))
}

// GetCategoryByID returns a category or common.ErrNotFound.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	return s.getCategoryByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryByIDTx(ctx context.Context, q queryable, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(q.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// FindCategoryByName looks a category up ignoring case. It returns nil, nil
// when no category of that type has the name.
func (s *SQLiteStorage) FindCategoryByName(ctx context.Context, name string, txnType model.TransactionType) (*model.Category, error) {
	return s.findCategoryByNameTx(ctx, s.db, name, txnType)
}

func (s *SQLiteStorage) findCategoryByNameTx(ctx context.Context, q queryable, name string, txnType model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateType(txnType); err != nil {
		return nil, err
	}

	cat, err := scanCategory(q.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE name_key = ? AND type = ?`, NameKey(name), string(txnType)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// CreateCategory inserts a category and fills in its ID and CreatedAt.
// A name already used by a category of the same type, in any case, yields
// common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	return s.createCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q queryable, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	category.Name = strings.TrimSpace(category.Name)
	if category.CreatedAt.IsZero() {
		category.CreatedAt = s.now()
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO categories (name, name_key, type, icon, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.Name, NameKey(category.Name), string(category.Type),
		category.Icon, category.IsDefault, toMillis(category.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create category %q: %w", category.Name, translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}
	category.ID = id

	slog.Info("created category", "name", category.Name, "type", category.Type, "id", id)
	return nil
}

// UpdateCategory rewrites name, type and icon of an existing category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	return s.updateCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) updateCategoryTx(ctx context.Context, q queryable, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	category.Name = strings.TrimSpace(category.Name)
	result, err := q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, name_key = ?, type = ?, icon = ?
		WHERE id = ?`,
		category.Name, NameKey(category.Name), string(category.Type), category.Icon, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", category.ID, translateError(err))
	}

	return requireAffected(result, "category", category.ID)
}

// DeleteCategory removes a category. Its transactions are removed by the
// ON DELETE CASCADE foreign key.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteCategoryTx(ctx context.Context, q queryable, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, translateError(err))
	}
	if err := requireAffected(result, "category", id); err != nil {
		return err
	}

	slog.Info("deleted category", "id", id)
	return nil
}

// CountCategories counts the categories of one type.
func (s *SQLiteStorage) CountCategories(ctx context.Context, txnType model.TransactionType) (int, error) {
	return s.countCategoriesTx(ctx, s.db, txnType)
}

func (s *SQLiteStorage) countCategoriesTx(ctx context.Context, q queryable, txnType model.TransactionType) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateType(txnType); err != nil {
		return 0, err
	}

	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE type = ?`, string(txnType)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}

func requireAffected(result sql.Result, entity string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, common.ErrNotFound)
	}
	return nil
}

// Transaction-scoped category methods.

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	return t.storage.getCategoriesTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoriesByType(ctx context.Context, txnType model.TransactionType) ([]model.Category, error) {
	return t.storage.getCategoriesByTypeTx(ctx, t.tx, txnType)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	return t.storage.getCategoryByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) FindCategoryByName(ctx context.Context, name string, txnType model.TransactionType) (*model.Category, error) {
	return t.storage.findCategoryByNameTx(ctx, t.tx, name, txnType)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, category *model.Category) error {
	return t.storage.createCategoryTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) UpdateCategory(ctx context.Context, category *model.Category) error {
	return t.storage.updateCategoryTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id int64) error {
	return t.storage.deleteCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) CountCategories(ctx context.Context, txnType model.TransactionType) (int, error) {
	return t.storage.countCategoriesTx(ctx, t.tx, txnType)
}
