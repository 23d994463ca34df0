package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocketbook/internal/model"
)

const selectOperations = `
	SELECT
		o.id,
		o.operation_date,
		o.category_id,
		c.name,
		o.description,
		o.amount_cents,
		o.operation_type
	FROM operations o
	JOIN categories c ON o.category_id = c.id`

// AddOperation records an operation. Its type is copied from the category.
func (s *SQLiteStorage) AddOperation(ctx context.Context, amount decimal.Decimal, categoryID int64, date time.Time, description string) (*model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return addOperation(ctx, s.db, amount, categoryID, date, description)
}

// GetOperations returns operations newest first.
func (s *SQLiteStorage) GetOperations(ctx context.Context, filter model.OperationFilter) ([]model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOperations(ctx, s.db, filter)
}

// GetOperationByID returns a single operation.
func (s *SQLiteStorage) GetOperationByID(ctx context.Context, id int64) (*model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOperationByID(ctx, s.db, id)
}

// UpdateOperation rewrites an operation in place, keeping its ID. The type is
// taken again from the (possibly changed) category.
func (s *SQLiteStorage) UpdateOperation(ctx context.Context, op *model.Operation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return updateOperation(ctx, tx, op)
	})
}

// DeleteOperation removes an operation. Deleting a missing ID is not an error.
func (s *SQLiteStorage) DeleteOperation(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteOperation(ctx, s.db, id)
}

func categoryTypeOf(ctx context.Context, q queryable, categoryID int64) (model.CategoryType, string, error) {
	var (
		categoryType model.CategoryType
		name         string
	)
	err := q.QueryRowContext(ctx,
		`SELECT category_type, name FROM categories WHERE id = ?`, categoryID,
	).Scan(&categoryType, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("%w: id %d", ErrCategoryNotFound, categoryID)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to look up category: %w", err)
	}
	return categoryType, name, nil
}

func addOperation(ctx context.Context, q queryable, amount decimal.Decimal, categoryID int64, date time.Time, description string) (*model.Operation, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return nil, err
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}

	categoryType, categoryName, err := categoryTypeOf(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}

	op := &model.Operation{
		Date:         model.Date(date),
		Amount:       fromCents(toCents(amount)),
		Description:  strings.TrimSpace(description),
		CategoryName: categoryName,
		Type:         categoryType,
		CategoryID:   categoryID,
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO operations (operation_date, category_id, description, amount_cents, operation_type)
		VALUES (?, ?, ?, ?, ?)`,
		op.Date.Format(model.DateLayout), op.CategoryID, op.Description, toCents(op.Amount), string(op.Type))
	if err != nil {
		return nil, fmt.Errorf("failed to insert operation: %w", err)
	}

	op.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get operation ID: %w", err)
	}

	slog.Info("added operation",
		"id", op.ID,
		"type", op.Type,
		"category", op.CategoryName,
		"amount", op.Amount.StringFixed(2),
		"date", op.Date.Format(model.DateLayout))
	return op, nil
}

func getOperations(ctx context.Context, q queryable, filter model.OperationFilter) ([]model.Operation, error) {
	if filter == "" {
		filter = model.FilterAll
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}

	query := selectOperations
	var args []any
	if filter != model.FilterAll {
		query += ` WHERE o.operation_type = ?`
		args = append(args, string(filter))
	}
	query += ` ORDER BY o.operation_date DESC, o.id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	operations := []model.Operation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		operations = append(operations, *op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}

	slog.Debug("retrieved operations", "filter", filter, "count", len(operations))
	return operations, nil
}

func getOperationByID(ctx context.Context, q queryable, id int64) (*model.Operation, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, selectOperations+` WHERE o.id = ?`, id)
	op, err := scanOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrOperationNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

func updateOperation(ctx context.Context, q queryable, op *model.Operation) error {
	if err := validateOperation(op); err != nil {
		return err
	}

	categoryType, categoryName, err := categoryTypeOf(ctx, q, op.CategoryID)
	if err != nil {
		return err
	}

	date := model.Date(op.Date)
	description := strings.TrimSpace(op.Description)
	cents := toCents(op.Amount)

	result, err := q.ExecContext(ctx, `
		UPDATE operations
		SET operation_date = ?, category_id = ?, description = ?, amount_cents = ?, operation_type = ?
		WHERE id = ?`,
		date.Format(model.DateLayout), op.CategoryID, description, cents, string(categoryType), op.ID)
	if err != nil {
		return fmt.Errorf("failed to update operation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrOperationNotFound, op.ID)
	}

	op.Date = date
	op.Description = description
	op.Amount = fromCents(cents)
	op.Type = categoryType
	op.CategoryName = categoryName

	slog.Info("updated operation", "id", op.ID, "type", op.Type, "amount", op.Amount.StringFixed(2))
	return nil
}

func deleteOperation(ctx context.Context, q queryable, id int64) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM operations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Info("deleted operation", "id", id, "deleted", rowsAffected > 0)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (*model.Operation, error) {
	var (
		op    model.Operation
		date  string
		cents int64
	)
	if err := row.Scan(&op.ID, &date, &op.CategoryID, &op.CategoryName, &op.Description, &cents, &op.Type); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan operation: %w", err)
	}

	parsed, err := parseStoredDate(date)
	if err != nil {
		return nil, fmt.Errorf("operation %d: %w", op.ID, err)
	}
	op.Date = parsed
	op.Amount = fromCents(cents)
	return &op, nil
}

// parseStoredDate accepts plain dates and, for databases written by other
// tools, timestamps whose first ten characters are a date.
func parseStoredDate(s string) (time.Time, error) {
	if len(s) > len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}
