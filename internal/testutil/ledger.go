package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
)

// Entry is one operation to seed.
type Entry struct {
	Date        time.Time
	Category    string
	Amount      string
	Description string
}

// Limit is one monthly budget limit to seed.
type Limit struct {
	Month    time.Time
	Category string
	Amount   string
}

// Ledger is the seeded data returned by LedgerBuilder.Build.
type Ledger struct {
	Operations []model.Operation
	Limits     []model.BudgetLimit
}

// LedgerBuilder collects operations and budget limits and writes them to a
// store in one call.
//
//	ledger := testutil.NewLedgerBuilder(t).
//		WithOperation("Salary", "100", testutil.Day(2024, 1, 5)).
//		WithOperation("Food", "40", testutil.Day(2024, 1, 6)).
//		WithLimit("Food", "300", testutil.Day(2024, 1, 1)).
//		MustBuild(ctx, db.Storage)
type LedgerBuilder struct {
	t       *testing.T
	entries []Entry
	limits  []Limit
}

// NewLedgerBuilder creates an empty builder.
func NewLedgerBuilder(t *testing.T) *LedgerBuilder {
	t.Helper()
	return &LedgerBuilder{t: t}
}

// WithOperation adds an operation in the named category.
func (b *LedgerBuilder) WithOperation(category, amount string, date time.Time) *LedgerBuilder {
	b.entries = append(b.entries, Entry{Category: category, Amount: amount, Date: date})
	return b
}

// WithEntries adds several operations.
func (b *LedgerBuilder) WithEntries(entries ...Entry) *LedgerBuilder {
	b.entries = append(b.entries, entries...)
	return b
}

// WithLimit adds a monthly budget limit for the month containing month.
func (b *LedgerBuilder) WithLimit(category, amount string, month time.Time) *LedgerBuilder {
	b.limits = append(b.limits, Limit{Category: category, Amount: amount, Month: month})
	return b
}

// Build writes everything to store.
func (b *LedgerBuilder) Build(ctx context.Context, store service.Storage) (*Ledger, error) {
	ids := map[string]int64{}
	lookup := func(name string) (int64, error) {
		if id, ok := ids[name]; ok {
			return id, nil
		}
		cat, err := store.GetCategoryByName(ctx, name)
		if err != nil {
			return 0, err
		}
		ids[name] = cat.ID
		return cat.ID, nil
	}

	ledger := &Ledger{}
	for _, e := range b.entries {
		id, err := lookup(e.Category)
		if err != nil {
			return nil, fmt.Errorf("operation in %q: %w", e.Category, err)
		}
		amount, err := decimal.NewFromString(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("operation amount %q: %w", e.Amount, err)
		}
		op, err := store.AddOperation(ctx, amount, id, e.Date, e.Description)
		if err != nil {
			return nil, err
		}
		ledger.Operations = append(ledger.Operations, *op)
	}

	for _, l := range b.limits {
		id, err := lookup(l.Category)
		if err != nil {
			return nil, fmt.Errorf("budget limit for %q: %w", l.Category, err)
		}
		amount, err := decimal.NewFromString(l.Amount)
		if err != nil {
			return nil, fmt.Errorf("budget amount %q: %w", l.Amount, err)
		}
		limit, err := store.AddBudgetLimit(ctx, id, amount, l.Month)
		if err != nil {
			return nil, err
		}
		ledger.Limits = append(ledger.Limits, *limit)
	}

	return ledger, nil
}

// MustBuild is Build that fails the test on error.
func (b *LedgerBuilder) MustBuild(ctx context.Context, store service.Storage) *Ledger {
	b.t.Helper()
	ledger, err := b.Build(ctx, store)
	if err != nil {
		b.t.Fatalf("failed to build ledger: %v", err)
	}
	return ledger
}

// Day returns a UTC calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
