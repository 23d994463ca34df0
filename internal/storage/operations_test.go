package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
)

func TestAddOperation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		category string
		value    string
		wantType model.CategoryType
	}{
		{name: "expense category", category: "Food", value: "12.34", wantType: model.CategoryTypeExpense},
		{name: "income category", category: "Salary", value: "1000", wantType: model.CategoryTypeIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()

			op, err := store.AddOperation(ctx, amount(tt.value), categoryID(t, store, tt.category),
				time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC), "  note  ")
			require.NoError(t, err)
			assert.Positive(t, op.ID)
			assert.Equal(t, tt.wantType, op.Type)
			assert.Equal(t, "note", op.Description)

			stored, err := store.GetOperationByID(ctx, op.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, stored.Type)
			assert.Equal(t, tt.category, stored.CategoryName)
			assert.True(t, amount(tt.value).Equal(stored.Amount), "amount = %s", stored.Amount)
			assert.Equal(t, day(2024, 3, 15), stored.Date)
		})
	}
}

func TestAddOperation_RoundsToCents(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	op, err := store.AddOperation(ctx, amount("10.005"), categoryID(t, store, "Food"), day(2024, 1, 1), "")
	require.NoError(t, err)
	assert.Equal(t, "10.01", op.Amount.StringFixed(2))
}

func TestAddOperation_Invalid(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	foodID := categoryID(t, store, "Food")

	tests := []struct {
		wantErr    error
		date       time.Time
		name       string
		value      string
		categoryID int64
	}{
		{name: "zero amount", value: "0", categoryID: foodID, date: day(2024, 1, 1), wantErr: ErrInvalidAmount},
		{name: "negative amount", value: "-5", categoryID: foodID, date: day(2024, 1, 1), wantErr: ErrInvalidAmount},
		{name: "sub-cent amount", value: "0.004", categoryID: foodID, date: day(2024, 1, 1), wantErr: ErrInvalidAmount},
		{name: "missing date", value: "5", categoryID: foodID, wantErr: ErrInvalidDate},
		{name: "unknown category", value: "5", categoryID: 9999, date: day(2024, 1, 1), wantErr: ErrCategoryNotFound},
		{name: "invalid category id", value: "5", categoryID: 0, date: day(2024, 1, 1), wantErr: ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AddOperation(ctx, amount(tt.value), tt.categoryID, tt.date, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	ops, err := store.GetOperations(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, ops, "rejected operations must not be stored")
}

func TestGetOperations_Filter(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	addOp(t, store, "100", "Salary", day(2024, 1, 1))
	addOp(t, store, "40", "Food", day(2024, 1, 2))
	addOp(t, store, "15", "Transport", day(2024, 1, 3))

	tests := []struct {
		filter    model.OperationFilter
		name      string
		wantCount int
	}{
		{name: "all", filter: model.FilterAll, wantCount: 3},
		{name: "empty filter means all", filter: "", wantCount: 3},
		{name: "income", filter: model.FilterIncome, wantCount: 1},
		{name: "expense", filter: model.FilterExpense, wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := store.GetOperations(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, ops, tt.wantCount)
			if tt.filter == model.FilterIncome || tt.filter == model.FilterExpense {
				for _, op := range ops {
					assert.Equal(t, string(tt.filter), string(op.Type))
				}
			}
		})
	}

	_, err := store.GetOperations(ctx, model.OperationFilter("transfer"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGetOperations_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	first := addOp(t, store, "1", "Food", day(2024, 2, 1))
	latest := addOp(t, store, "2", "Food", day(2024, 2, 10))
	sameDay := addOp(t, store, "3", "Food", day(2024, 2, 1))

	ops, err := store.GetOperations(ctx, model.FilterAll)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, []int64{latest.ID, sameDay.ID, first.ID}, []int64{ops[0].ID, ops[1].ID, ops[2].ID})
}

func TestGetOperations_Empty(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ops, err := store.GetOperations(context.Background(), model.FilterExpense)
	require.NoError(t, err)
	assert.NotNil(t, ops)
	assert.Empty(t, ops)
}

func TestUpdateOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps id and re-derives type", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		op := addOp(t, store, "50", "Food", day(2024, 4, 1))
		other := addOp(t, store, "70", "Transport", day(2024, 4, 2))

		op.CategoryID = categoryID(t, store, "Bonus")
		op.Amount = amount("75.5")
		op.Date = day(2024, 4, 20)
		op.Description = "refund"
		require.NoError(t, store.UpdateOperation(ctx, op))
		assert.Equal(t, model.CategoryTypeIncome, op.Type)

		stored, err := store.GetOperationByID(ctx, op.ID)
		require.NoError(t, err)
		assert.Equal(t, model.CategoryTypeIncome, stored.Type)
		assert.Equal(t, "Bonus", stored.CategoryName)
		assert.Equal(t, "75.50", stored.Amount.StringFixed(2))
		assert.Equal(t, day(2024, 4, 20), stored.Date)
		assert.Equal(t, "refund", stored.Description)

		untouched, err := store.GetOperationByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "70.00", untouched.Amount.StringFixed(2))

		ops, err := store.GetOperations(ctx, model.FilterAll)
		require.NoError(t, err)
		assert.Len(t, ops, 2)
	})

	t.Run("missing operation", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		err := store.UpdateOperation(ctx, &model.Operation{
			ID:         42,
			CategoryID: categoryID(t, store, "Food"),
			Amount:     amount("1"),
			Date:       day(2024, 1, 1),
		})
		assert.ErrorIs(t, err, ErrOperationNotFound)
	})

	t.Run("unknown category leaves row unchanged", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		op := addOp(t, store, "50", "Food", day(2024, 4, 1))
		update := *op
		update.CategoryID = 9999
		assert.ErrorIs(t, store.UpdateOperation(ctx, &update), ErrCategoryNotFound)

		stored, err := store.GetOperationByID(ctx, op.ID)
		require.NoError(t, err)
		assert.Equal(t, op.CategoryID, stored.CategoryID)
	})

	t.Run("nil operation", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		assert.ErrorIs(t, store.UpdateOperation(ctx, nil), ErrNilParameter)
	})
}

func TestDeleteOperation(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	op := addOp(t, store, "9.99", "Food", day(2024, 1, 1))

	require.NoError(t, store.DeleteOperation(ctx, op.ID))
	_, err := store.GetOperationByID(ctx, op.ID)
	assert.ErrorIs(t, err, ErrOperationNotFound)

	// Missing ID is not an error
	assert.NoError(t, store.DeleteOperation(ctx, op.ID))
	assert.NoError(t, store.DeleteOperation(ctx, 12345))
}

func TestParseStoredDate(t *testing.T) {
	tests := []struct {
		want    time.Time
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain date", input: "2024-02-29", want: day(2024, 2, 29)},
		{name: "timestamp", input: "2024-02-29 13:45:00", want: day(2024, 2, 29)},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStoredDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddOperation_RejectsAmountBeyondCents(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.AddOperation(ctx, amount("200000000000000000"), categoryID(t, store, "Food"), day(2024, 3, 1), "")
	assert.ErrorIs(t, err, ErrAmountTooLarge)

	ops, err := store.GetOperations(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
