package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/service"
)

func TestSQLiteStorage_CategoryUniqueness(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	createTestCategory(t, store, "Coffee", model.TypeExpense)

	tests := []struct {
		wantErr error
		name    string
		catName string
		catType model.TransactionType
	}{
		{
			name:    "same name differs only in case",
			catName: "COFFEE",
			catType: model.TypeExpense,
			wantErr: common.ErrDuplicateEntry,
		},
		{
			name:    "same name with surrounding spaces",
			catName: "  coffee ",
			catType: model.TypeExpense,
			wantErr: common.ErrDuplicateEntry,
		},
		{
			name:    "same name under the other type",
			catName: "Coffee",
			catType: model.TypeIncome,
		},
		{
			name:    "distinct name",
			catName: "Tea",
			catType: model.TypeExpense,
		},
		{
			name:    "blank name",
			catName: "   ",
			catType: model.TypeExpense,
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "invalid type",
			catName: "Loans",
			catType: "transfer",
			wantErr: ErrInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := model.Category{Name: tt.catName, Type: tt.catType}
			err := store.CreateCategory(ctx, &cat)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, cat.ID)
		})
	}
}

func TestSQLiteStorage_UnicodeCategoryNames(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	createTestCategory(t, store, "Ăn uống", model.TypeExpense)

	err := store.CreateCategory(ctx, &model.Category{Name: "ĂN UỐNG", Type: model.TypeExpense})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	found, err := store.FindCategoryByName(ctx, "ăn uống", model.TypeExpense)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ăn uống", found.Name)
}

func TestSQLiteStorage_FindCategoryByName(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	gifts := createTestCategory(t, store, "Gifts", model.TypeIncome)

	found, err := store.FindCategoryByName(ctx, "gifts", model.TypeIncome)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, gifts.ID, found.ID)

	missing, err := store.FindCategoryByName(ctx, "gifts", model.TypeExpense)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStorage_UpdateCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	createTestCategory(t, store, "Rent", model.TypeExpense)
	food := createTestCategory(t, store, "Food", model.TypeExpense)

	food.Name = "rent"
	assert.ErrorIs(t, store.UpdateCategory(ctx, &food), common.ErrDuplicateEntry)

	food.Name = "Groceries"
	food.Icon = "shopping_cart"
	require.NoError(t, store.UpdateCategory(ctx, &food))

	got, err := store.GetCategoryByID(ctx, food.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
	assert.Equal(t, "shopping_cart", got.Icon)

	missing := model.Category{ID: 9999, Name: "Ghost", Type: model.TypeExpense}
	assert.ErrorIs(t, store.UpdateCategory(ctx, &missing), common.ErrNotFound)
}

func TestSQLiteStorage_DeleteCategoryCascades(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	food := createTestCategory(t, store, "Food", model.TypeExpense)
	rent := createTestCategory(t, store, "Rent", model.TypeExpense)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	createTestTransaction(t, store, food, 10, date)
	createTestTransaction(t, store, food, 15, date)
	kept := createTestTransaction(t, store, rent, 500, date)

	require.NoError(t, store.DeleteCategory(ctx, food.ID))

	txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, kept.ID, txns[0].ID)

	_, err = store.GetCategoryByID(ctx, food.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteCategory(ctx, food.ID), common.ErrNotFound)
}

func TestSQLiteStorage_CategoriesByType(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	createTestCategory(t, store, "shopping", model.TypeExpense)
	createTestCategory(t, store, "Bills", model.TypeExpense)
	createTestCategory(t, store, "Salary", model.TypeIncome)

	expenses, err := store.GetCategoriesByType(ctx, model.TypeExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Bills", expenses[0].Name)
	assert.Equal(t, "shopping", expenses[1].Name)

	all, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := store.CountCategories(ctx, model.TypeIncome)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
