package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Budget usage thresholds for bar coloring, in percent.
var (
	warnPercent = decimal.NewFromInt(80)
	fullPercent = decimal.NewFromInt(100)
)

// AmountFormatter renders money with locale-aware digit grouping.
type AmountFormatter struct {
	printer *message.Printer
}

// NewAmountFormatter creates a formatter for the given locale.
func NewAmountFormatter(tag language.Tag) *AmountFormatter {
	return &AmountFormatter{printer: message.NewPrinter(tag)}
}

// Format returns d with two decimals and grouped thousands, e.g. 1,234.50.
func (f *AmountFormatter) Format(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Signed formats d with an explicit sign and colors it as income or expense.
func (f *AmountFormatter) Signed(d decimal.Decimal) string {
	switch {
	case d.IsPositive():
		return IncomeStyle.Render("+" + f.Format(d))
	case d.IsNegative():
		return ExpenseStyle.Render(f.Format(d))
	default:
		return f.Format(d)
	}
}

// Percent formats a percentage with one decimal.
func (f *AmountFormatter) Percent(p decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(p.Round(1).InexactFloat64(), number.Scale(1))) + "%"
}

// ProgressBar draws a bar of width cells for a usage percentage. The bar is
// full at 100% and turns yellow at 80% and red above 100%.
func ProgressBar(percent decimal.Decimal, width int) string {
	if width <= 0 {
		return ""
	}

	filled := percent.Mul(decimal.NewFromInt(int64(width))).Div(fullPercent).Round(0).IntPart()
	if filled < 0 {
		filled = 0
	}
	if filled > int64(width) {
		filled = int64(width)
	}

	color := SuccessColor
	switch {
	case percent.GreaterThan(fullPercent):
		color = ErrorColor
	case percent.GreaterThanOrEqual(warnPercent):
		color = WarningColor
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", int(filled)))
	rest := SubtleStyle.Render(strings.Repeat("░", width-int(filled)))
	return bar + rest
}
