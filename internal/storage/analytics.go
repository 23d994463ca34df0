package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/pocketbook/internal/model"
)

// periodQueries holds one fixed query per bucket. The bucket only selects a
// query; it is never interpolated into SQL.
var periodQueries = map[model.Bucket]string{
	model.BucketDay: `
		SELECT
			strftime('%Y-%m-%d', operation_date) AS period,
			SUM(CASE WHEN operation_type = 'income' THEN amount_cents ELSE 0 END) AS income,
			SUM(CASE WHEN operation_type = 'expense' THEN amount_cents ELSE 0 END) AS expense
		FROM operations
		WHERE operation_date BETWEEN ? AND ?
		GROUP BY period
		ORDER BY period`,
	model.BucketMonth: `
		SELECT
			strftime('%Y-%m', operation_date) AS period,
			SUM(CASE WHEN operation_type = 'income' THEN amount_cents ELSE 0 END) AS income,
			SUM(CASE WHEN operation_type = 'expense' THEN amount_cents ELSE 0 END) AS expense
		FROM operations
		WHERE operation_date BETWEEN ? AND ?
		GROUP BY period
		ORDER BY period`,
}

// GetFinancialSummary totals income and expense between start and end inclusive.
func (s *SQLiteStorage) GetFinancialSummary(ctx context.Context, start, end time.Time) (*model.FinancialSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getFinancialSummary(ctx, s.db, start, end)
}

// GetExpenseStatistics returns expense totals per category, largest first.
// Categories without expense in the range are omitted.
func (s *SQLiteStorage) GetExpenseStatistics(ctx context.Context, start, end time.Time) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getExpenseStatistics(ctx, s.db, start, end)
}

// GetIncomeExpenseByPeriod returns income and expense sums per day or month,
// one row for every bucket that has operations, in ascending order.
func (s *SQLiteStorage) GetIncomeExpenseByPeriod(ctx context.Context, start, end time.Time, bucket model.Bucket) ([]model.PeriodTotals, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getIncomeExpenseByPeriod(ctx, s.db, start, end, bucket)
}

func dateArgs(start, end time.Time) (string, string) {
	return model.Date(start).Format(model.DateLayout), model.Date(end).Format(model.DateLayout)
}

func getFinancialSummary(ctx context.Context, q queryable, start, end time.Time) (*model.FinancialSummary, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	from, to := dateArgs(start, end)
	var income, expense int64
	err := q.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN operation_type = 'income' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN operation_type = 'expense' THEN amount_cents END), 0)
		FROM operations
		WHERE operation_date BETWEEN ? AND ?`, from, to,
	).Scan(&income, &expense)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial summary: %w", err)
	}

	return &model.FinancialSummary{
		Income:  fromCents(income),
		Expense: fromCents(expense),
		Balance: fromCents(income - expense),
	}, nil
}

func getExpenseStatistics(ctx context.Context, q queryable, start, end time.Time) ([]model.CategoryTotal, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	from, to := dateArgs(start, end)
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name, SUM(o.amount_cents) AS total
		FROM operations o
		JOIN categories c ON o.category_id = c.id
		WHERE o.operation_type = 'expense' AND o.operation_date BETWEEN ? AND ?
		GROUP BY c.id, c.name
		HAVING total > 0
		ORDER BY total DESC, c.name`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense statistics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		totals     = []model.CategoryTotal{}
		grandCents int64
	)
	for rows.Next() {
		var (
			ct    model.CategoryTotal
			cents int64
		)
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan expense statistics: %w", err)
		}
		ct.Total = fromCents(cents)
		grandCents += cents
		totals = append(totals, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense statistics: %w", err)
	}

	if grandCents > 0 {
		grand := fromCents(grandCents)
		for i := range totals {
			totals[i].Share = totals[i].Total.DivRound(grand, 4)
		}
	}

	slog.Debug("computed expense statistics", "categories", len(totals), "total_cents", grandCents)
	return totals, nil
}

func getIncomeExpenseByPeriod(ctx context.Context, q queryable, start, end time.Time, bucket model.Bucket) ([]model.PeriodTotals, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	query, ok := periodQueries[bucket]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBucket, bucket)
	}

	from, to := dateArgs(start, end)
	rows, err := q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query income and expense by %s: %w", bucket, err)
	}
	defer func() { _ = rows.Close() }()

	series := []model.PeriodTotals{}
	for rows.Next() {
		var (
			pt              model.PeriodTotals
			income, expense int64
		)
		if err := rows.Scan(&pt.Period, &income, &expense); err != nil {
			return nil, fmt.Errorf("failed to scan period totals: %w", err)
		}
		pt.Income = fromCents(income)
		pt.Expense = fromCents(expense)
		series = append(series, pt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period totals: %w", err)
	}

	return series, nil
}
