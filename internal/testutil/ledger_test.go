package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
)

func TestLedgerBuilder(t *testing.T) {
	ctx := context.Background()
	db := SetupTestDB(t)

	ledger := NewLedgerBuilder(t).
		WithOperation("Salary", "100", Day(2024, 1, 5)).
		WithEntries(Entry{Category: "Food", Amount: "40", Date: Day(2024, 1, 6), Description: "market"}).
		WithLimit("Food", "300", Day(2024, 1, 1)).
		MustBuild(ctx, db.Storage)

	require.Len(t, ledger.Operations, 2)
	require.Len(t, ledger.Limits, 1)
	assert.Equal(t, model.CategoryTypeIncome, ledger.Operations[0].Type)
	assert.Equal(t, "market", ledger.Operations[1].Description)
	assert.Equal(t, "40.00", ledger.Limits[0].Spent.StringFixed(2))
}

func TestLedgerBuilder_UnknownCategory(t *testing.T) {
	db := SetupTestDB(t)

	_, err := NewLedgerBuilder(t).
		WithOperation("Nope", "1", Day(2024, 1, 1)).
		Build(context.Background(), db.Storage)
	assert.Error(t, err)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := SetupTestDB(t)
	foodID := db.MustCategoryID("Food")

	err := db.WithTransaction(func(tx service.Transaction) error {
		_, err := tx.AddOperation(ctx, decimal.NewFromInt(5), foodID, Day(2024, 1, 1), "")
		return err
	})
	require.NoError(t, err)

	ops, err := db.Storage.GetOperations(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, ops)
}
