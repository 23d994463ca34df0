// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocketbook/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Category operations
	GetCategories(ctx context.Context, categoryType *model.CategoryType) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountCategoryOperations(ctx context.Context, categoryID int64) (int, error)

	// Operation operations
	AddOperation(ctx context.Context, amount decimal.Decimal, categoryID int64, date time.Time, description string) (*model.Operation, error)
	GetOperations(ctx context.Context, filter model.OperationFilter) ([]model.Operation, error)
	GetOperationByID(ctx context.Context, id int64) (*model.Operation, error)
	UpdateOperation(ctx context.Context, op *model.Operation) error
	DeleteOperation(ctx context.Context, id int64) error

	// Analytics
	GetFinancialSummary(ctx context.Context, start, end time.Time) (*model.FinancialSummary, error)
	GetExpenseStatistics(ctx context.Context, start, end time.Time) ([]model.CategoryTotal, error)
	GetIncomeExpenseByPeriod(ctx context.Context, start, end time.Time, bucket model.Bucket) ([]model.PeriodTotals, error)

	// Budget limit operations
	AddBudgetLimit(ctx context.Context, categoryID int64, amount decimal.Decimal, periodStart time.Time) (*model.BudgetLimit, error)
	GetBudgetLimits(ctx context.Context, periodStart time.Time) ([]model.BudgetLimit, error)
	GetBudgetLimitByID(ctx context.Context, id int64) (*model.BudgetLimit, error)
	DeleteBudgetLimit(ctx context.Context, id int64) error

	// Database management
	Migrate(ctx context.Context) error
	Initialize(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// BudgetLimitUpdater is implemented by stores that can edit a budget limit in
// place. Callers that hold only a Storage should go through ReplaceBudgetLimit.
type BudgetLimitUpdater interface {
	UpdateBudgetLimit(ctx context.Context, id, categoryID int64, amount decimal.Decimal, periodStart time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
