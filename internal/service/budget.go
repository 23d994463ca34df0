package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// ReplaceBudgetLimit changes a budget limit's category, amount and period.
//
// Stores implementing BudgetLimitUpdater edit the row in place and keep its ID.
// For other stores the limit is deleted and recreated inside one transaction,
// so the returned ID may differ from the one passed in.
func ReplaceBudgetLimit(ctx context.Context, store Storage, id, categoryID int64, amount decimal.Decimal, periodStart time.Time) (int64, error) {
	if updater, ok := store.(BudgetLimitUpdater); ok {
		if err := updater.UpdateBudgetLimit(ctx, id, categoryID, amount, periodStart); err != nil {
			return 0, err
		}
		return id, nil
	}

	slog.Debug("store cannot update budget limits in place, recreating", "id", id)

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Delete is idempotent; look the limit up so a missing id fails here as
	// it does for in-place updates
	if _, err := tx.GetBudgetLimitByID(ctx, id); err != nil {
		return 0, err
	}

	if err := tx.DeleteBudgetLimit(ctx, id); err != nil {
		return 0, fmt.Errorf("failed to delete budget limit %d: %w", id, err)
	}

	limit, err := tx.AddBudgetLimit(ctx, categoryID, amount, periodStart)
	if err != nil {
		return 0, fmt.Errorf("failed to recreate budget limit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit budget limit replacement: %w", err)
	}

	return limit.ID, nil
}
