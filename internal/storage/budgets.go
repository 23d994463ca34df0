package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocketbook/internal/model"
)

// Spent is summed over the limit's own window so that a limit always reports
// against the dates it was stored with.
const selectBudgetLimits = `
	SELECT
		b.id,
		b.category_id,
		c.name,
		b.amount_cents,
		b.period_type,
		b.start_date,
		b.end_date,
		b.created_at,
		COALESCE((
			SELECT SUM(o.amount_cents)
			FROM operations o
			WHERE o.category_id = b.category_id
			AND o.operation_date BETWEEN b.start_date AND b.end_date
		), 0) AS spent_cents
	FROM budget_limits b
	JOIN categories c ON b.category_id = c.id`

// AddBudgetLimit creates a monthly limit for the month containing periodStart.
func (s *SQLiteStorage) AddBudgetLimit(ctx context.Context, categoryID int64, amount decimal.Decimal, periodStart time.Time) (*model.BudgetLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return addBudgetLimit(ctx, s.db, categoryID, amount, periodStart)
}

// GetBudgetLimits returns the limits stored for the month containing
// periodStart, ordered by category name, each with its spent amount.
func (s *SQLiteStorage) GetBudgetLimits(ctx context.Context, periodStart time.Time) ([]model.BudgetLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBudgetLimits(ctx, s.db, periodStart)
}

// GetBudgetLimitByID returns a single budget limit with its spent amount.
func (s *SQLiteStorage) GetBudgetLimitByID(ctx context.Context, id int64) (*model.BudgetLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBudgetLimitByID(ctx, s.db, id)
}

// UpdateBudgetLimit changes a limit in place. The ID is preserved.
func (s *SQLiteStorage) UpdateBudgetLimit(ctx context.Context, id, categoryID int64, amount decimal.Decimal, periodStart time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return updateBudgetLimit(ctx, tx, id, categoryID, amount, periodStart)
	})
}

// DeleteBudgetLimit removes a limit. Deleting a missing ID is not an error.
func (s *SQLiteStorage) DeleteBudgetLimit(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteBudgetLimit(ctx, s.db, id)
}

func addBudgetLimit(ctx context.Context, q queryable, categoryID int64, amount decimal.Decimal, periodStart time.Time) (*model.BudgetLimit, error) {
	if err := validateID(categoryID, "categoryID"); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateDate(periodStart); err != nil {
		return nil, err
	}

	if _, _, err := categoryTypeOf(ctx, q, categoryID); err != nil {
		return nil, err
	}

	start, end := model.MonthWindow(periodStart)
	result, err := q.ExecContext(ctx, `
		INSERT INTO budget_limits (category_id, amount_cents, period_type, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)`,
		categoryID, toCents(amount), string(model.PeriodMonth),
		start.Format(model.DateLayout), end.Format(model.DateLayout))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: category %d, %s", ErrDuplicateBudgetLimit, categoryID, start.Format(model.MonthLayout))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert budget limit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get budget limit ID: %w", err)
	}

	slog.Info("added budget limit",
		"id", id,
		"category_id", categoryID,
		"amount", fromCents(toCents(amount)).StringFixed(2),
		"start", start.Format(model.DateLayout),
		"end", end.Format(model.DateLayout))

	return getBudgetLimitByID(ctx, q, id)
}

func getBudgetLimits(ctx context.Context, q queryable, periodStart time.Time) ([]model.BudgetLimit, error) {
	if err := validateDate(periodStart); err != nil {
		return nil, err
	}

	start, end := model.MonthWindow(periodStart)
	rows, err := q.QueryContext(ctx, selectBudgetLimits+`
		WHERE b.start_date = ? AND b.end_date = ?
		ORDER BY c.name`,
		start.Format(model.DateLayout), end.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query budget limits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	limits := []model.BudgetLimit{}
	for rows.Next() {
		limit, err := scanBudgetLimit(rows)
		if err != nil {
			return nil, err
		}
		limits = append(limits, *limit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget limits: %w", err)
	}

	slog.Debug("retrieved budget limits", "month", start.Format(model.MonthLayout), "count", len(limits))
	return limits, nil
}

func getBudgetLimitByID(ctx context.Context, q queryable, id int64) (*model.BudgetLimit, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	limit, err := scanBudgetLimit(q.QueryRowContext(ctx, selectBudgetLimits+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrBudgetLimitNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return limit, nil
}

func updateBudgetLimit(ctx context.Context, q queryable, id, categoryID int64, amount decimal.Decimal, periodStart time.Time) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := validateDate(periodStart); err != nil {
		return err
	}

	if _, _, err := categoryTypeOf(ctx, q, categoryID); err != nil {
		return err
	}

	start, end := model.MonthWindow(periodStart)
	result, err := q.ExecContext(ctx, `
		UPDATE budget_limits
		SET category_id = ?, amount_cents = ?, period_type = ?, start_date = ?, end_date = ?
		WHERE id = ?`,
		categoryID, toCents(amount), string(model.PeriodMonth),
		start.Format(model.DateLayout), end.Format(model.DateLayout), id)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: category %d, %s", ErrDuplicateBudgetLimit, categoryID, start.Format(model.MonthLayout))
	}
	if err != nil {
		return fmt.Errorf("failed to update budget limit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrBudgetLimitNotFound, id)
	}

	slog.Info("updated budget limit", "id", id, "category_id", categoryID, "month", start.Format(model.MonthLayout))
	return nil
}

func deleteBudgetLimit(ctx context.Context, q queryable, id int64) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM budget_limits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget limit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Info("deleted budget limit", "id", id, "deleted", rowsAffected > 0)
	return nil
}

func scanBudgetLimit(row rowScanner) (*model.BudgetLimit, error) {
	var (
		limit       model.BudgetLimit
		start, end  string
		createdAt   sql.NullTime
		amountCents int64
		spentCents  int64
	)
	err := row.Scan(
		&limit.ID, &limit.CategoryID, &limit.CategoryName, &amountCents,
		&limit.PeriodType, &start, &end, &createdAt, &spentCents,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan budget limit: %w", err)
	}

	if limit.StartDate, err = parseStoredDate(start); err != nil {
		return nil, fmt.Errorf("budget limit %d: %w", limit.ID, err)
	}
	if limit.EndDate, err = parseStoredDate(end); err != nil {
		return nil, fmt.Errorf("budget limit %d: %w", limit.ID, err)
	}
	limit.CreatedAt = createdAt.Time
	limit.Amount = fromCents(amountCents)
	limit.Spent = fromCents(spentCents)
	return &limit, nil
}
