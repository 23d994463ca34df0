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
)

func operationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ops",
		Aliases: []string{"operations", "op"},
		Short:   "Record and manage income and expense operations",
		Example: `  # Record an expense for today
  pocketbook ops add --amount 12,50 --category Food --description "Lunch"

  # Record income on a given date
  pocketbook ops add --amount 2500 --category Salary --date 2024-03-01

  # Show only expenses
  pocketbook ops list --filter expense`,
	}

	cmd.AddCommand(addOperationCmd())
	cmd.AddCommand(listOperationsCmd())
	cmd.AddCommand(editOperationCmd())
	cmd.AddCommand(deleteOperationCmd())

	return cmd
}

func addOperationCmd() *cobra.Command {
	var amountFlag, categoryFlag, dateFlag, descriptionFlag string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an operation",
		Long:  `Record an operation. Whether it is income or expense follows from its category.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(amountFlag)
			if err != nil {
				return err
			}
			date, err := parseDate(dateFlag)
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

			op, err := store.AddOperation(ctx, amount, cat.ID, date, descriptionFlag)
			if err != nil {
				return fmt.Errorf("failed to add operation: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s in %s on %s (ID %d)",
				op.Type, amountFormatter().Format(op.Amount), op.CategoryName,
				op.Date.Format(model.DateLayout), op.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amountFlag, "amount", "a", "", "amount, e.g. 12.50 or 12,50 (required)")
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "category name or ID (required)")
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&descriptionFlag, "description", "m", "", "free-form note")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func listOperationsCmd() *cobra.Command {
	var filterFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			filter := model.OperationFilter(filterFlag)
			if !filter.Valid() {
				return common.NewUserError(
					fmt.Sprintf("Unknown filter %q (want all, income or expense)", filterFlag), common.ErrInvalidInput)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ops, err := store.GetOperations(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get operations: %w", err)
			}

			if len(ops) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No operations found. Use 'pocketbook ops add' to record one."))
				return nil
			}

			f := amountFormatter()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Date"),
				headerStyle.Render("Category"),
				headerStyle.Render("Type"),
				headerStyle.Render("Amount"),
				headerStyle.Render("Description"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 10),
				strings.Repeat("-", 15),
				strings.Repeat("-", 7),
				strings.Repeat("-", 12),
				strings.Repeat("-", 30))

			for _, op := range ops {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					op.ID,
					op.Date.Format(model.DateLayout),
					op.CategoryName,
					styleType(op.Type),
					f.Format(op.Amount),
					op.Description)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&filterFlag, "filter", "f", string(model.FilterAll), "all, income or expense")
	return cmd
}

func editOperationCmd() *cobra.Command {
	var amountFlag, categoryFlag, dateFlag, descriptionFlag string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an operation",
		Long:  `Change an operation in place. Only the given flags are changed; the ID stays the same.`,
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

			op, err := store.GetOperationByID(ctx, id)
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(fmt.Sprintf("No operation with ID %d", id), err)
			}
			if err != nil {
				return fmt.Errorf("failed to get operation: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("amount") {
				if op.Amount, err = parseAmount(amountFlag); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				if op.Date, err = parseDate(dateFlag); err != nil {
					return err
				}
			}
			if flags.Changed("category") {
				cat, err := resolveCategory(ctx, store, categoryFlag)
				if err != nil {
					return err
				}
				op.CategoryID = cat.ID
			}
			if flags.Changed("description") {
				op.Description = descriptionFlag
			}

			if err := store.UpdateOperation(ctx, op); err != nil {
				return fmt.Errorf("failed to update operation: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated operation %d: %s %s in %s on %s",
				op.ID, op.Type, amountFormatter().Format(op.Amount), op.CategoryName, op.Date.Format(model.DateLayout))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amountFlag, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "new category name or ID")
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "new date YYYY-MM-DD")
	cmd.Flags().StringVarP(&descriptionFlag, "description", "m", "", "new note")

	return cmd
}

func deleteOperationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an operation",
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

			if err := store.DeleteOperation(ctx, id); err != nil {
				return fmt.Errorf("failed to delete operation: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted operation %d", id)))
			return nil
		},
	}
}
