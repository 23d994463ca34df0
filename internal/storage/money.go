package storage

import "github.com/shopspring/decimal"

// Amounts are stored as integer cents so that SUM in SQL stays exact.

func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
