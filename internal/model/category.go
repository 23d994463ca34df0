// Package model defines the core domain types of the finance tracker.
package model

import "fmt"

// CategoryType indicates whether a category holds income or expense operations.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income operations.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense operations.
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// ParseCategoryType converts user input into a CategoryType.
func ParseCategoryType(s string) (CategoryType, error) {
	t := CategoryType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown category type %q (want income or expense)", s)
	}
	return t, nil
}

// Category is a named bucket that operations and budget limits attach to.
type Category struct {
	Name string
	Type CategoryType
	ID   int64
}
