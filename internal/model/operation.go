package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is a single dated income or expense entry.
type Operation struct {
	Date         time.Time
	Amount       decimal.Decimal
	Description  string
	CategoryName string       // Populated on reads
	Type         CategoryType // Copied from the category when the operation is stored
	ID           int64
	CategoryID   int64
}

// OperationFilter selects which operations a listing returns.
type OperationFilter string

const (
	// FilterAll returns every operation.
	FilterAll OperationFilter = "all"
	// FilterIncome returns income operations only.
	FilterIncome OperationFilter = "income"
	// FilterExpense returns expense operations only.
	FilterExpense OperationFilter = "expense"
)

// Valid reports whether f is a known filter.
func (f OperationFilter) Valid() bool {
	switch f {
	case FilterAll, FilterIncome, FilterExpense:
		return true
	}
	return false
}
