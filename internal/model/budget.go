package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType is the length of a budget period.
type PeriodType string

const (
	// PeriodMonth is a calendar month. It is the only period the tracker creates.
	PeriodMonth PeriodType = "month"
	// PeriodYear is accepted by the schema for compatibility with older databases.
	PeriodYear PeriodType = "year"
)

// BudgetLimit caps spending in one category for a single month.
type BudgetLimit struct {
	StartDate    time.Time
	EndDate      time.Time
	CreatedAt    time.Time
	Amount       decimal.Decimal
	Spent        decimal.Decimal // Derived from operations, never stored
	CategoryName string
	PeriodType   PeriodType
	ID           int64
	CategoryID   int64
}

// Remaining returns how much of the limit is left. It is negative once the
// limit is exceeded.
func (b BudgetLimit) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.Spent)
}

// PercentUsed returns spent/amount as a percentage rounded to one decimal.
func (b BudgetLimit) PercentUsed() decimal.Decimal {
	if !b.Amount.IsPositive() {
		return decimal.Zero
	}
	return b.Spent.Div(b.Amount).Mul(decimal.NewFromInt(100)).Round(1)
}

// Exceeded reports whether spending went over the limit.
func (b BudgetLimit) Exceeded() bool {
	return b.Spent.GreaterThan(b.Amount)
}
