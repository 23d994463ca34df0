package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage is the ledger store: one SQLite file behind a single connection.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

var (
	_ service.Storage            = (*SQLiteStorage)(nil)
	_ service.BudgetLimitUpdater = (*SQLiteStorage)(nil)
)

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Validate input
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database. Foreign keys are off by default in SQLite and the
	// restrict/cascade rules on categories depend on them.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; the open transaction owns the only connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Initialize brings the schema up to date and is safe to call on every
// start. A new ledger gets the default categories from its first migration;
// an existing one is not reseeded, so defaults the user deleted stay deleted.
func (s *SQLiteStorage) Initialize(ctx context.Context) error {
	return s.Migrate(ctx)
}

// NewCheckpointManager returns a snapshot manager for this database file.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	return NewCheckpointManager(s.db, s.dbPath)
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{tx: tx}, nil
}

// withTx runs fn inside a transaction, committing when fn succeeds.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqliteTransaction runs repository calls against an open *sql.Tx.
type sqliteTransaction struct {
	tx *sql.Tx
}

var (
	_ service.Transaction        = (*sqliteTransaction)(nil)
	_ service.BudgetLimitUpdater = (*sqliteTransaction)(nil)
)

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods share the query helpers with SQLiteStorage.
func (t *sqliteTransaction) GetCategories(ctx context.Context, categoryType *model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, t.tx, categoryType)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByName(ctx, t.tx, name)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createCategory(ctx, t.tx, name, categoryType)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, t.tx, id)
}

func (t *sqliteTransaction) CountCategoryOperations(ctx context.Context, categoryID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countCategoryOperations(ctx, t.tx, categoryID)
}

func (t *sqliteTransaction) AddOperation(ctx context.Context, amount decimal.Decimal, categoryID int64, date time.Time, description string) (*model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return addOperation(ctx, t.tx, amount, categoryID, date, description)
}

func (t *sqliteTransaction) GetOperations(ctx context.Context, filter model.OperationFilter) ([]model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOperations(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetOperationByID(ctx context.Context, id int64) (*model.Operation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOperationByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateOperation(ctx context.Context, op *model.Operation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateOperation(ctx, t.tx, op)
}

func (t *sqliteTransaction) DeleteOperation(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteOperation(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetFinancialSummary(ctx context.Context, start, end time.Time) (*model.FinancialSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getFinancialSummary(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) GetExpenseStatistics(ctx context.Context, start, end time.Time) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getExpenseStatistics(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) GetIncomeExpenseByPeriod(ctx context.Context, start, end time.Time, bucket model.Bucket) ([]model.PeriodTotals, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getIncomeExpenseByPeriod(ctx, t.tx, start, end, bucket)
}

func (t *sqliteTransaction) AddBudgetLimit(ctx context.Context, categoryID int64, amount decimal.Decimal, periodStart time.Time) (*model.BudgetLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return addBudgetLimit(ctx, t.tx, categoryID, amount, periodStart)
}

func (t *sqliteTransaction) GetBudgetLimits(ctx context.Context, periodStart time.Time) ([]model.BudgetLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBudgetLimits(ctx, t.tx, periodStart)
}

func (t *sqliteTransaction) GetBudgetLimitByID(ctx context.Context, id int64) (*model.BudgetLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBudgetLimitByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateBudgetLimit(ctx context.Context, id, categoryID int64, amount decimal.Decimal, periodStart time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateBudgetLimit(ctx, t.tx, id, categoryID, amount, periodStart)
}

func (t *sqliteTransaction) DeleteBudgetLimit(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteBudgetLimit(ctx, t.tx, id)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) Initialize(_ context.Context) error {
	return fmt.Errorf("initialization cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
