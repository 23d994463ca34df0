package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
)

const shareBarWidth = 20

func rangeTitle(title string, start, end time.Time) string {
	return fmt.Sprintf("%s %s → %s", title, start.Format(model.DateLayout), end.Format(model.DateLayout))
}

func summaryCmd() *cobra.Command {
	var period, from, to string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show total income, expense and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, end, err := resolveRange(period, from, to)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summary, err := store.GetFinancialSummary(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to get financial summary: %w", err)
			}

			f := amountFormatter()
			content := strings.Join([]string{
				fmt.Sprintf("Income:  %s", cli.IncomeStyle.Render(f.Format(summary.Income))),
				fmt.Sprintf("Expense: %s", cli.ExpenseStyle.Render(f.Format(summary.Expense))),
				fmt.Sprintf("Balance: %s", f.Signed(summary.Balance)),
			}, "\n")

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(rangeTitle(cli.ChartIcon+" Summary", start, end), content))
			return nil
		},
	}

	addRangeFlags(cmd, &period, &from, &to)
	return cmd
}

func statsCmd() *cobra.Command {
	var period, from, to string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show expenses per category, largest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			start, end, err := resolveRange(period, from, to)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := store.GetExpenseStatistics(ctx, start, end)
			if err != nil {
				return fmt.Errorf("failed to get expense statistics: %w", err)
			}

			fmt.Fprintln(out, cli.TitleStyle.Render(rangeTitle("Expenses by category", start, end)))
			if len(stats) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No expenses in this period."))
				return nil
			}

			f := amountFormatter()
			hundred := decimal.NewFromInt(100)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t\n",
				headerStyle.Render("Category"),
				headerStyle.Render("Total"),
				headerStyle.Render("Share"))
			for _, s := range stats {
				share := s.Share.Mul(hundred)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					s.Name, f.Format(s.Total), f.Percent(share), cli.ProgressBar(share, shareBarWidth))
			}

			return nil
		},
	}

	addRangeFlags(cmd, &period, &from, &to)
	return cmd
}

func seriesCmd() *cobra.Command {
	var period, from, to, bucketFlag string

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Show income and expense per day or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			bucket, err := model.ParseBucket(bucketFlag)
			if err != nil {
				return common.NewUserError(err.Error(), common.ErrInvalidInput)
			}

			start, end, err := resolveRange(period, from, to)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			series, err := store.GetIncomeExpenseByPeriod(ctx, start, end, bucket)
			if err != nil {
				return fmt.Errorf("failed to get income and expense series: %w", err)
			}

			fmt.Fprintln(out, cli.TitleStyle.Render(rangeTitle(fmt.Sprintf("Income and expense by %s", bucket), start, end)))
			if len(series) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No operations in this period."))
				return nil
			}

			f := amountFormatter()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("Period"),
				headerStyle.Render("Income"),
				headerStyle.Render("Expense"),
				headerStyle.Render("Balance"))
			for _, p := range series {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					p.Period, f.Format(p.Income), f.Format(p.Expense), f.Signed(p.Balance()))
			}

			return nil
		},
	}

	addRangeFlags(cmd, &period, &from, &to)
	cmd.Flags().StringVarP(&bucketFlag, "bucket", "b", string(model.BucketMonth), "group by day or month")
	return cmd
}
