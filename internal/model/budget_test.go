package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBudgetLimitDerivedValues(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		spent         string
		wantRemaining string
		wantPercent   string
		wantExceeded  bool
	}{
		{name: "untouched", amount: "500", spent: "0", wantRemaining: "500", wantPercent: "0", wantExceeded: false},
		{name: "partly spent", amount: "500", spent: "125.50", wantRemaining: "374.5", wantPercent: "25.1", wantExceeded: false},
		{name: "exactly at limit", amount: "200", spent: "200", wantRemaining: "0", wantPercent: "100", wantExceeded: false},
		{name: "over limit", amount: "100", spent: "150", wantRemaining: "-50", wantPercent: "150", wantExceeded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := BudgetLimit{
				Amount: decimal.RequireFromString(tt.amount),
				Spent:  decimal.RequireFromString(tt.spent),
			}
			assert.Equal(t, tt.wantRemaining, limit.Remaining().String())
			assert.Equal(t, tt.wantPercent, limit.PercentUsed().String())
			assert.Equal(t, tt.wantExceeded, limit.Exceeded())
		})
	}
}

func TestBudgetLimitPercentUsedZeroAmount(t *testing.T) {
	limit := BudgetLimit{Amount: decimal.Zero, Spent: decimal.NewFromInt(10)}
	assert.True(t, limit.PercentUsed().IsZero())
}
