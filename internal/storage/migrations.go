package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the user_version a fully migrated ledger reports.
const ExpectedSchemaVersion = 2

// Migration moves the schema from Version-1 to Version.
type Migration struct {
	Up          func(context.Context, *sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema and default categories",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					category_type TEXT NOT NULL CHECK (category_type IN ('income', 'expense'))
				)`,

				`CREATE TABLE IF NOT EXISTS operations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					operation_date TEXT NOT NULL,
					category_id INTEGER NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
					operation_type TEXT NOT NULL CHECK (operation_type IN ('income', 'expense')),
					FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT
				)`,

				`CREATE TABLE IF NOT EXISTS budget_limits (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					category_id INTEGER NOT NULL,
					amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
					period_type TEXT NOT NULL CHECK (period_type IN ('month', 'year')),
					start_date TEXT NOT NULL,
					end_date TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.ExecContext(ctx, query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}

			// Defaults exist only from the first migration on; later starts
			// leave the user's category set alone
			_, err := seedDefaultCategories(ctx, tx)
			return err
		},
	},
	{
		Version:     2,
		Description: "Add lookup indexes and one budget limit per category and period",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_operations_date ON operations(operation_date)`,
				`CREATE INDEX IF NOT EXISTS idx_operations_category ON operations(category_id, operation_date)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_limits_period
					ON budget_limits(category_id, start_date, end_date)`,
			}

			for _, query := range queries {
				if _, err := tx.ExecContext(ctx, query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, ExpectedSchemaVersion)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(ctx, tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("applied ledger migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
