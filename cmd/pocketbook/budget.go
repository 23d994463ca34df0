package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
	"github.com/Veraticus/pocketbook/internal/storage"
)

const budgetBarWidth = 20

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets"},
		Short:   "Manage monthly budget limits",
		Long: `Set a spending limit per category and month, and compare it with what was
actually recorded in that month.`,
		Example: `  # Limit food spending in March 2024
  pocketbook budget add --category Food --amount 300 --month 2024-03

  # Show this month's limits
  pocketbook budget list`,
	}

	cmd.AddCommand(addBudgetCmd())
	cmd.AddCommand(listBudgetCmd())
	cmd.AddCommand(editBudgetCmd())
	cmd.AddCommand(deleteBudgetCmd())

	return cmd
}

func duplicateLimitError(err error, category string, month string) error {
	return common.NewUserError(fmt.Sprintf("%s already has a limit for %s; use 'pocketbook budget edit'", category, month), err)
}

func addBudgetCmd() *cobra.Command {
	var amountFlag, categoryFlag, monthFlag string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Set a limit for one category and month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(amountFlag)
			if err != nil {
				return err
			}
			month, err := parseMonth(monthFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := resolveCategory(ctx, store, categoryFlag)
			if err != nil {
				return err
			}

			limit, err := store.AddBudgetLimit(ctx, cat.ID, amount, month)
			if errors.Is(err, storage.ErrDuplicateBudgetLimit) {
				return duplicateLimitError(err, cat.Name, month.Format(model.MonthLayout))
			}
			if err != nil {
				return fmt.Errorf("failed to add budget limit: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Set %s limit of %s for %s → %s (ID %d)",
				limit.CategoryName, amountFormatter().Format(limit.Amount),
				limit.StartDate.Format(model.DateLayout), limit.EndDate.Format(model.DateLayout), limit.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amountFlag, "amount", "a", "", "limit amount (required)")
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "category name or ID (required)")
	cmd.Flags().StringVar(&monthFlag, "month", "", "month YYYY-MM (default: current month)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func listBudgetCmd() *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show limits and spending for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			month, err := parseMonth(monthFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			limits, err := store.GetBudgetLimits(ctx, month)
			if err != nil {
				return fmt.Errorf("failed to get budget limits: %w", err)
			}

			fmt.Fprintln(out, cli.TitleStyle.Render("Budget "+month.Format(model.MonthLayout)))
			if len(limits) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No limits for this month. Use 'pocketbook budget add' to set one."))
				return nil
			}

			f := amountFormatter()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Category"),
				headerStyle.Render("Limit"),
				headerStyle.Render("Spent"),
				headerStyle.Render("Remaining"),
				headerStyle.Render("Used"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 15),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10),
				strings.Repeat("-", 6))

			exceeded := 0
			for _, limit := range limits {
				used := f.Percent(limit.PercentUsed())
				if limit.Exceeded() {
					exceeded++
					used = cli.ErrorStyle.Render(used)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					limit.ID,
					limit.CategoryName,
					f.Format(limit.Amount),
					f.Format(limit.Spent),
					f.Signed(limit.Remaining()),
					used,
					cli.ProgressBar(limit.PercentUsed(), budgetBarWidth))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if exceeded > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d of %d limits exceeded", exceeded, len(limits))))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "month YYYY-MM (default: current month)")
	return cmd
}

func editBudgetCmd() *cobra.Command {
	var amountFlag, categoryFlag, monthFlag string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a budget limit",
		Long:  `Change the category, amount or month of a limit. Only the given flags are changed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			limit, err := store.GetBudgetLimitByID(ctx, id)
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(fmt.Sprintf("No budget limit with ID %d", id), err)
			}
			if err != nil {
				return fmt.Errorf("failed to get budget limit: %w", err)
			}

			categoryID, categoryName := limit.CategoryID, limit.CategoryName
			amount, month := limit.Amount, limit.StartDate

			flags := cmd.Flags()
			if flags.Changed("category") {
				cat, err := resolveCategory(ctx, store, categoryFlag)
				if err != nil {
					return err
				}
				categoryID, categoryName = cat.ID, cat.Name
			}
			if flags.Changed("amount") {
				if amount, err = parseAmount(amountFlag); err != nil {
					return err
				}
			}
			if flags.Changed("month") {
				if month, err = parseMonth(monthFlag); err != nil {
					return err
				}
			}

			newID, err := service.ReplaceBudgetLimit(ctx, store, id, categoryID, amount, month)
			if errors.Is(err, storage.ErrDuplicateBudgetLimit) {
				return duplicateLimitError(err, categoryName, month.Format(model.MonthLayout))
			}
			if err != nil {
				return fmt.Errorf("failed to update budget limit: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated budget limit %d: %s %s for %s",
				newID, categoryName, amountFormatter().Format(amount), month.Format(model.MonthLayout))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amountFlag, "amount", "a", "", "new limit amount")
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "new category name or ID")
	cmd.Flags().StringVar(&monthFlag, "month", "", "new month YYYY-MM")

	return cmd
}

func deleteBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteBudgetLimit(ctx, id); err != nil {
				return fmt.Errorf("failed to delete budget limit: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted budget limit %d", id)))
			return nil
		},
	}
}
