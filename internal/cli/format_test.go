package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func init() {
	// Plain output keeps assertions independent of the terminal
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestAmountFormatter_Format(t *testing.T) {
	f := NewAmountFormatter(language.English)

	tests := []struct {
		value string
		want  string
	}{
		{value: "0", want: "0.00"},
		{value: "12.5", want: "12.50"},
		{value: "1234.56", want: "1,234.56"},
		{value: "1000000", want: "1,000,000.00"},
		{value: "-15.25", want: "-15.25"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(decimal.RequireFromString(tt.value)))
		})
	}
}

func TestAmountFormatter_SignedAndPercent(t *testing.T) {
	f := NewAmountFormatter(language.English)

	assert.Equal(t, "+60.00", f.Signed(decimal.NewFromInt(60)))
	assert.Equal(t, "-5.00", f.Signed(decimal.NewFromInt(-5)))
	assert.Equal(t, "0.00", f.Signed(decimal.Zero))

	assert.Equal(t, "75.0%", f.Percent(decimal.RequireFromString("75")))
	assert.Equal(t, "115.3%", f.Percent(decimal.RequireFromString("115.25")))
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		percent    string
		width      int
		wantFilled int
	}{
		{name: "empty", percent: "0", width: 10, wantFilled: 0},
		{name: "half", percent: "50", width: 10, wantFilled: 5},
		{name: "full", percent: "100", width: 20, wantFilled: 20},
		{name: "over limit is capped", percent: "250", width: 10, wantFilled: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ProgressBar(decimal.RequireFromString(tt.percent), tt.width)
			assert.Equal(t, tt.width, utf8.RuneCountInString(bar))
			assert.Equal(t, tt.wantFilled, strings.Count(bar, "█"))
		})
	}

	assert.Empty(t, ProgressBar(decimal.NewFromInt(50), 0))
}
