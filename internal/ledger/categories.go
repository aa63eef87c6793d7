package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
)

// SeedDefaults installs model.DefaultCategories when no expense category
// exists yet and reports how many were created.
func (l *Ledger) SeedDefaults(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	created := 0
	err := l.withTx(ctx, func(tx service.Transaction) error {
		count, err := tx.CountCategories(ctx, model.TypeExpense)
		if err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, def := range model.DefaultCategories {
			existing, err := tx.FindCategoryByName(ctx, def.Name, def.Type)
			if err != nil {
				return fmt.Errorf("failed to look up category %q: %w", def.Name, err)
			}
			if existing != nil {
				continue
			}

			cat := def
			cat.IsDefault = true
			if err := tx.CreateCategory(ctx, &cat); err != nil {
				return fmt.Errorf("failed to create default category %q: %w", def.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		slog.Info("seeded default categories", "count", created)
	}
	return created, nil
}

// CreateCategory adds a user category. Names are unique per type, ignoring case.
func (l *Ledger) CreateCategory(ctx context.Context, cat model.Category) (*model.Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validateCategory(&cat); err != nil {
		return nil, err
	}
	cat.IsDefault = false
	cat.ID = 0

	if err := l.store.CreateCategory(ctx, &cat); err != nil {
		return nil, duplicateName(cat, err)
	}
	return &cat, nil
}

// UpdateCategory renames a user category or changes its icon. A category that
// already has transactions cannot switch type.
func (l *Ledger) UpdateCategory(ctx context.Context, cat model.Category) (*model.Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validateCategory(&cat); err != nil {
		return nil, err
	}

	err := l.withTx(ctx, func(tx service.Transaction) error {
		existing, err := tx.GetCategoryByID(ctx, cat.ID)
		if err != nil {
			return notFound("category", cat.ID, err)
		}
		if existing.IsDefault {
			return common.NewUserError(
				fmt.Sprintf("%q is a default category and cannot be edited", existing.Name),
				common.ErrDefaultCategory)
		}

		if existing.Type != cat.Type {
			used, err := tx.GetTransactionCount(ctx, service.TransactionFilter{CategoryID: cat.ID})
			if err != nil {
				return fmt.Errorf("failed to count transactions: %w", err)
			}
			if used > 0 {
				return common.NewUserError(
					fmt.Sprintf("%q has %d transactions and cannot change type", existing.Name, used),
					common.ErrTypeMismatch)
			}
		}

		cat.IsDefault = false
		cat.CreatedAt = existing.CreatedAt
		if err := tx.UpdateCategory(ctx, &cat); err != nil {
			return duplicateName(cat, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("updated category", "id", cat.ID, "name", cat.Name)
	return &cat, nil
}

// DeleteCategory removes a user category together with its transactions and
// reverses their net effect on the balance.
func (l *Ledger) DeleteCategory(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var balance *model.Balance
	err := l.withTx(ctx, func(tx service.Transaction) error {
		existing, err := tx.GetCategoryByID(ctx, id)
		if err != nil {
			return notFound("category", id, err)
		}
		if existing.IsDefault {
			return common.NewUserError(
				fmt.Sprintf("%q is a default category and cannot be deleted", existing.Name),
				common.ErrDefaultCategory)
		}

		net, err := tx.GetSignedTotalByCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to sum category transactions: %w", err)
		}
		if err := tx.DeleteCategory(ctx, id); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}

		if net != 0 {
			balance, err = l.adjustBalance(ctx, tx, -net)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("deleted category", "id", id)
	if balance != nil {
		l.publish(balance)
	}
	return nil
}

// Categories lists the categories of one type, or all of them when txnType is empty.
func (l *Ledger) Categories(ctx context.Context, txnType model.TransactionType) ([]model.Category, error) {
	if txnType == "" {
		return l.store.GetCategories(ctx)
	}
	return l.store.GetCategoriesByType(ctx, txnType)
}

func validateCategory(cat *model.Category) error {
	cat.Name = normalizeName(cat.Name)
	if cat.Name == "" {
		return common.NewUserError("Category name cannot be empty",
			fmt.Errorf("%w: empty category name", common.ErrInvalidInput))
	}
	if !cat.Type.IsValid() {
		return common.NewUserError(
			fmt.Sprintf("Type must be %q or %q", model.TypeIncome, model.TypeExpense),
			fmt.Errorf("%w: type %q", common.ErrInvalidInput, cat.Type))
	}
	return nil
}

func duplicateName(cat model.Category, err error) error {
	if errors.Is(err, common.ErrDuplicateEntry) {
		return common.NewUserError(
			fmt.Sprintf("An %s category named %q already exists", cat.Type, cat.Name), err)
	}
	return fmt.Errorf("failed to save category: %w", err)
}
