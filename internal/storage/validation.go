// Package storage provides the data persistence layer for the pocketbook application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = fmt.Errorf("%w: string parameter cannot be empty", common.ErrInvalidInput)
	ErrInvalidID           = fmt.Errorf("%w: identifier must be positive", common.ErrInvalidInput)
	ErrInvalidDateRange    = fmt.Errorf("%w: start date must not be after end date", common.ErrInvalidInput)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", common.ErrInvalidInput)
	ErrAmountTooLarge      = fmt.Errorf("%w: amount is too large to store", common.ErrInvalidInput)
	ErrInvalidDate         = fmt.Errorf("%w: date is required", common.ErrInvalidInput)
	ErrInvalidCategoryType = fmt.Errorf("%w: category type must be income or expense", common.ErrInvalidInput)
	ErrInvalidBucket       = fmt.Errorf("%w: bucket must be day or month", common.ErrInvalidInput)
	ErrInvalidFilter       = fmt.Errorf("%w: filter must be all, income or expense", common.ErrInvalidInput)
	ErrNilParameter        = fmt.Errorf("%w: parameter cannot be nil", common.ErrInvalidInput)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

// maxCents is the largest amount the amount_cents columns can hold.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// validateAmount rejects zero and negative amounts, and amounts whose cent
// value does not fit in an int64. Amounts are compared after rounding to
// cents, so 0.004 is rejected too.
func validateAmount(amount decimal.Decimal) error {
	cents := amount.Round(2).Shift(2)
	if cents.GreaterThan(maxCents) {
		return fmt.Errorf("%w: %s", ErrAmountTooLarge, amount.String())
	}
	if !cents.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	return nil
}

func validateDate(d time.Time) error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func validateDateRange(start, end time.Time) error {
	if err := validateDate(start); err != nil {
		return err
	}
	if err := validateDate(end); err != nil {
		return err
	}
	if model.Date(end).Before(model.Date(start)) {
		return fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidDateRange, end.Format(model.DateLayout), start.Format(model.DateLayout))
	}
	return nil
}

func validateCategoryType(t model.CategoryType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategoryType, t)
	}
	return nil
}

// validateOperation validates an operation passed in for update.
func validateOperation(op *model.Operation) error {
	if op == nil {
		return fmt.Errorf("%w: operation", ErrNilParameter)
	}
	if err := validateID(op.ID, "id"); err != nil {
		return err
	}
	if err := validateID(op.CategoryID, "categoryID"); err != nil {
		return err
	}
	if err := validateDate(op.Date); err != nil {
		return err
	}
	return validateAmount(op.Amount)
}
