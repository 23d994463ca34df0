package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/service"
	"github.com/Veraticus/pocketbook/internal/testutil"
)

// plainStore hides the in-place update capability of the wrapped store.
type plainStore struct {
	service.Storage
}

func TestReplaceBudgetLimit_InPlace(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	ledger := testutil.NewLedgerBuilder(t).
		WithLimit("Food", "100", testutil.Day(2024, 2, 1)).
		MustBuild(ctx, db.Storage)
	original := ledger.Limits[0]

	id, err := service.ReplaceBudgetLimit(ctx, db.Storage, original.ID,
		db.MustCategoryID("Health"), decimal.NewFromInt(250), testutil.Day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, original.ID, id)

	limit, err := db.Storage.GetBudgetLimitByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Health", limit.CategoryName)
	assert.Equal(t, testutil.Day(2024, 3, 31), limit.EndDate)
}

func TestReplaceBudgetLimit_Fallback(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	store := plainStore{db.Storage}

	_, ok := service.Storage(store).(service.BudgetLimitUpdater)
	require.False(t, ok)

	ledger := testutil.NewLedgerBuilder(t).
		WithLimit("Food", "100", testutil.Day(2024, 2, 1)).
		WithLimit("Food", "100", testutil.Day(2024, 4, 1)).
		MustBuild(ctx, db.Storage)
	feb, apr := ledger.Limits[0], ledger.Limits[1]

	t.Run("recreates in one transaction", func(t *testing.T) {
		id, err := service.ReplaceBudgetLimit(ctx, store, feb.ID,
			db.MustCategoryID("Food"), decimal.NewFromInt(180), testutil.Day(2024, 3, 1))
		require.NoError(t, err)
		assert.NotEqual(t, feb.ID, id)

		_, err = db.Storage.GetBudgetLimitByID(ctx, feb.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)

		limit, err := db.Storage.GetBudgetLimitByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "180.00", limit.Amount.StringFixed(2))
		assert.Equal(t, testutil.Day(2024, 3, 1), limit.StartDate)
	})

	t.Run("failed recreate keeps the original", func(t *testing.T) {
		// Moving the April limit onto March collides with the limit created above
		_, err := service.ReplaceBudgetLimit(ctx, store, apr.ID,
			db.MustCategoryID("Food"), decimal.NewFromInt(50), testutil.Day(2024, 3, 1))
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)

		limit, err := db.Storage.GetBudgetLimitByID(ctx, apr.ID)
		require.NoError(t, err)
		assert.Equal(t, "100.00", limit.Amount.StringFixed(2))
	})
}

func TestReplaceBudgetLimit_MissingID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	stores := map[string]service.Storage{
		"in place": db.Storage,
		"fallback": plainStore{db.Storage},
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := service.ReplaceBudgetLimit(ctx, store, 9999,
				db.MustCategoryID("Food"), decimal.NewFromInt(75), testutil.Day(2024, 5, 1))
			assert.ErrorIs(t, err, common.ErrNotFound)

			limits, err := db.Storage.GetBudgetLimits(ctx, testutil.Day(2024, 5, 1))
			require.NoError(t, err)
			assert.Empty(t, limits, "nothing is created for a missing limit")
		})
	}
}
