package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_FreshDatabase(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	require.NoError(t, store.Migrate(ctx))

	version, err = store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	for _, table := range []string{"categories", "operations", "budget_limits"} {
		var name string
		err := store.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}

	var seeded int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&seeded))
	assert.Equal(t, len(DefaultCategories), seeded, "first migration seeds the defaults")

	var indexName string
	err = store.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_budget_limits_period'`).Scan(&indexName)
	assert.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrate_NewerSchemaRejected(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", ExpectedSchemaVersion+1))
	require.NoError(t, err)

	err = store.Migrate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestMigrate_CheckConstraints(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.db.Exec(`INSERT INTO categories (name, category_type) VALUES ('Odd', 'transfer')`)
	assert.Error(t, err, "category_type must be income or expense")

	foodID := categoryID(t, store, "Food")
	_, err = store.db.Exec(`INSERT INTO operations (operation_date, category_id, amount_cents, operation_type)
		VALUES ('2024-01-01', ?, 0, 'expense')`, foodID)
	assert.Error(t, err, "amount must be positive")

	_, err = store.db.Exec(`INSERT INTO budget_limits (category_id, amount_cents, period_type, start_date, end_date)
		VALUES (?, 100, 'week', '2024-01-01', '2024-01-07')`, foodID)
	assert.Error(t, err, "period_type must be month or year")
}
