package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
	"github.com/Veraticus/pocketbook/internal/storage"
)

// now is replaced in tests.
var now = time.Now

// allTimeStart is where the "all" period preset begins.
var allTimeStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// initStorage opens the configured database, migrating and seeding it.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings not loaded", common.ErrMissingConfig)
	}

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func amountFormatter() *cli.AmountFormatter {
	if settings == nil {
		return cli.NewAmountFormatter(language.English)
	}
	return cli.NewAmountFormatter(settings.Locale)
}

func today() time.Time {
	return model.Date(now())
}

// parseAmount accepts "12.34" and "12,34". The value must be positive.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, common.NewUserError("Amount is required", common.ErrInvalidInput)
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			return decimal.Zero, common.NewUserError(
				fmt.Sprintf("Amount %q mixes ',' and '.'; use one decimal separator without grouping", s),
				common.ErrInvalidInput)
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("Amount %q is not a number", s), common.ErrInvalidInput)
	}
	if !d.Round(2).IsPositive() {
		return decimal.Zero, common.NewUserError("Amount must be greater than zero", storage.ErrInvalidAmount)
	}
	return d, nil
}

// parseDate parses YYYY-MM-DD; empty means today.
func parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return today(), nil
	}
	d, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("Date %q must be YYYY-MM-DD", s), common.ErrInvalidInput)
	}
	return d, nil
}

// parseMonth parses YYYY-MM into the first day of that month; empty means
// the current month.
func parseMonth(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		start, _ := model.MonthWindow(today())
		return start, nil
	}
	m, err := time.Parse(model.MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("Month %q must be YYYY-MM", s), common.ErrInvalidInput)
	}
	return m, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("%q is not a valid ID", s), common.ErrInvalidInput)
	}
	return id, nil
}

// resolveRange turns a period preset or explicit --from/--to into an
// inclusive date range. Without either, the current month to date is used.
func resolveRange(period, from, to string) (time.Time, time.Time, error) {
	end := today()

	if period != "" {
		if from != "" || to != "" {
			return time.Time{}, time.Time{}, common.NewUserError("Use either --period or --from/--to, not both", common.ErrInvalidInput)
		}
		switch period {
		case "week":
			return end.AddDate(0, 0, -6), end, nil
		case "month":
			start, _ := model.MonthWindow(end)
			return start, end, nil
		case "year":
			return time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), end, nil
		case "all":
			return allTimeStart, end, nil
		default:
			return time.Time{}, time.Time{}, common.NewUserError(
				fmt.Sprintf("Unknown period %q (want week, month, year or all)", period), common.ErrInvalidInput)
		}
	}

	start, _ := model.MonthWindow(end)
	var err error
	if from != "" {
		if start, err = parseDate(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to != "" {
		if end, err = parseDate(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, common.NewUserError(
			fmt.Sprintf("--to %s is before --from %s", end.Format(model.DateLayout), start.Format(model.DateLayout)),
			storage.ErrInvalidDateRange)
	}
	return start, end, nil
}

// addRangeFlags registers --period, --from and --to on cmd.
func addRangeFlags(cmd *cobra.Command, period, from, to *string) {
	cmd.Flags().StringVarP(period, "period", "p", "", "preset range: week, month, year or all")
	cmd.Flags().StringVar(from, "from", "", "start date YYYY-MM-DD (default: first day of this month)")
	cmd.Flags().StringVar(to, "to", "", "end date YYYY-MM-DD (default: today)")
}

// resolveCategory looks a category up by ID or by name.
func resolveCategory(ctx context.Context, store service.Storage, ref string) (*model.Category, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, common.NewUserError("Category is required", common.ErrInvalidInput)
	}

	var (
		cat *model.Category
		err error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		cat, err = store.GetCategoryByID(ctx, id)
	} else {
		cat, err = store.GetCategoryByName(ctx, ref)
	}
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewUserError(fmt.Sprintf("No category %q (see 'pocketbook categories list')", ref), err)
	}
	return cat, err
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
