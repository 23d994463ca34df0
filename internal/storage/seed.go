package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/pocketbook/internal/model"
)

// DefaultCategories are inserted by the first migration of a new ledger.
var DefaultCategories = []model.Category{
	{Name: "Salary", Type: model.CategoryTypeIncome},
	{Name: "Bonus", Type: model.CategoryTypeIncome},
	{Name: "Investments", Type: model.CategoryTypeIncome},
	{Name: "Food", Type: model.CategoryTypeExpense},
	{Name: "Transport", Type: model.CategoryTypeExpense},
	{Name: "Entertainment", Type: model.CategoryTypeExpense},
	{Name: "Utilities", Type: model.CategoryTypeExpense},
	{Name: "Health", Type: model.CategoryTypeExpense},
	{Name: "Clothing", Type: model.CategoryTypeExpense},
	{Name: "Education", Type: model.CategoryTypeExpense},
}

// SeedDefaultCategories inserts DefaultCategories, skipping any name that
// already exists. Migrate already seeds a new ledger once; this is for
// restoring defaults on request.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := seedDefaultCategories(ctx, tx)
		return err
	})
}

func seedDefaultCategories(ctx context.Context, q queryable) (int, error) {
	inserted := 0
	for _, cat := range DefaultCategories {
		result, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name, category_type) VALUES (?, ?)`,
			cat.Name, string(cat.Type))
		if err != nil {
			return inserted, fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	slog.Debug("seeded default categories",
		"inserted", inserted,
		"skipped", len(DefaultCategories)-inserted)
	return inserted, nil
}
