package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/pocketbook/internal/model"
)

// GetCategories returns categories ordered by name, optionally limited to one type.
func (s *SQLiteStorage) GetCategories(ctx context.Context, categoryType *model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, s.db, categoryType)
}

// GetCategoryByID returns a category by its ID.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByID(ctx, s.db, id)
}

// GetCategoryByName returns a category by its name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, s.db, name)
}

// CreateCategory creates a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createCategory(ctx, s.db, name, categoryType)
}

// DeleteCategory removes a category and, through the cascade, its budget limits.
// It fails with ErrCategoryInUse while operations still reference the category.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, s.db, id)
}

func getCategories(ctx context.Context, q queryable, categoryType *model.CategoryType) ([]model.Category, error) {
	query := `SELECT id, name, category_type FROM categories`
	var args []any
	if categoryType != nil {
		if err := validateCategoryType(*categoryType); err != nil {
			return nil, err
		}
		query += ` WHERE category_type = ?`
		args = append(args, string(*categoryType))
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []model.Category{}
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func getCategoryByID(ctx context.Context, q queryable, id int64) (*model.Category, error) {
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := q.QueryRowContext(ctx,
		`SELECT id, name, category_type FROM categories WHERE id = ?`, id,
	).Scan(&cat.ID, &cat.Name, &cat.Type)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrCategoryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

func getCategoryByName(ctx context.Context, q queryable, name string) (*model.Category, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := q.QueryRowContext(ctx,
		`SELECT id, name, category_type FROM categories WHERE name = ?`, strings.TrimSpace(name),
	).Scan(&cat.ID, &cat.Name, &cat.Type)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

func createCategory(ctx context.Context, q queryable, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateCategoryType(categoryType); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	result, err := q.ExecContext(ctx,
		`INSERT INTO categories (name, category_type) VALUES (?, ?)`,
		name, string(categoryType))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created new category", "name", name, "type", categoryType, "id", id)
	return &model.Category{ID: id, Name: name, Type: categoryType}, nil
}

// CountCategoryOperations reports how many operations reference a category.
func (s *SQLiteStorage) CountCategoryOperations(ctx context.Context, categoryID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countCategoryOperations(ctx, s.db, categoryID)
}

func countCategoryOperations(ctx context.Context, q queryable, categoryID int64) (int, error) {
	if err := validateID(categoryID, "categoryID"); err != nil {
		return 0, err
	}

	var n int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operations WHERE category_id = ?`, categoryID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}
	return n, nil
}

func deleteCategory(ctx context.Context, q queryable, id int64) error {
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: id %d", ErrCategoryInUse, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Info("deleted category", "id", id, "deleted", rowsAffected > 0)
	return nil
}
