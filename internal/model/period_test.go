package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthWindow(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantStart string
		wantEnd   string
	}{
		{name: "leap february", in: "2024-02-01", wantStart: "2024-02-01", wantEnd: "2024-02-29"},
		{name: "common february", in: "2023-02-01", wantStart: "2023-02-01", wantEnd: "2023-02-28"},
		{name: "thirty day month", in: "2024-04-01", wantStart: "2024-04-01", wantEnd: "2024-04-30"},
		{name: "december", in: "2024-12-01", wantStart: "2024-12-01", wantEnd: "2024-12-31"},
		{name: "mid month input", in: "2024-07-19", wantStart: "2024-07-01", wantEnd: "2024-07-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			require.NoError(t, err)

			start, end := MonthWindow(d)
			assert.Equal(t, tt.wantStart, start.Format(DateLayout))
			assert.Equal(t, tt.wantEnd, end.Format(DateLayout))
		})
	}
}

func TestDateTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2024, 5, 6, 23, 30, 0, 0, loc)

	got := Date(in)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), got)
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket("month")
	require.NoError(t, err)
	assert.Equal(t, BucketMonth, b)

	_, err = ParseBucket("week")
	assert.Error(t, err)
}

func TestParseCategoryType(t *testing.T) {
	ct, err := ParseCategoryType("income")
	require.NoError(t, err)
	assert.Equal(t, CategoryTypeIncome, ct)

	_, err = ParseCategoryType("system")
	assert.Error(t, err)
}

func TestOperationFilterValid(t *testing.T) {
	assert.True(t, FilterAll.Valid())
	assert.True(t, FilterIncome.Valid())
	assert.True(t, FilterExpense.Valid())
	assert.False(t, OperationFilter("transfers").Valid())
}
