package model

import "github.com/shopspring/decimal"

// FinancialSummary totals income and expense over a date range.
type FinancialSummary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// CategoryTotal is the expense total of one category in a range.
type CategoryTotal struct {
	Name       string
	Total      decimal.Decimal
	Share      decimal.Decimal // Fraction of all expense in the range, 0..1
	CategoryID int64
}

// PeriodTotals holds income and expense sums for one time bucket.
type PeriodTotals struct {
	Period  string // YYYY-MM-DD or YYYY-MM depending on the bucket
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Balance returns income minus expense for the bucket.
func (p PeriodTotals) Balance() decimal.Decimal {
	return p.Income.Sub(p.Expense)
}
