package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/common"
	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/storage"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage income and expense categories",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var filter *model.CategoryType
			if typeFlag != "" {
				t, err := model.ParseCategoryType(typeFlag)
				if err != nil {
					return common.NewUserError(err.Error(), common.ErrInvalidInput)
				}
				filter = &t
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'pocketbook categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Name"),
				headerStyle.Render("Type"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 20),
				strings.Repeat("-", 7))

			for _, cat := range categories {
				fmt.Fprintf(w, "%d\t%s\t%s\n", cat.ID, cat.Name, styleType(cat.Type))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "only show income or expense categories")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			categoryType, err := model.ParseCategoryType(typeFlag)
			if err != nil {
				return common.NewUserError(err.Error(), common.ErrInvalidInput)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.CreateCategory(ctx, args[0], categoryType)
			if errors.Is(err, storage.ErrDuplicateCategory) {
				return common.NewUserError(fmt.Sprintf("Category %q already exists", strings.TrimSpace(args[0])), err)
			}
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Created %s category %q (ID %d)", cat.Type, cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", string(model.CategoryTypeExpense), "category type: income or expense")
	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a category",
		Long: `Delete a category and all of its budget limits. A category that still has
operations cannot be deleted. An automatic checkpoint is taken first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := resolveCategory(ctx, store, args[0])
			if err != nil {
				return err
			}

			// Checked first so a refused delete neither prompts nor takes a snapshot
			inUse, err := store.CountCategoryOperations(ctx, cat.ID)
			if err != nil {
				return err
			}
			if inUse > 0 {
				return categoryInUseError(cat.Name, fmt.Errorf("%w: %d operations", storage.ErrCategoryInUse, inUse))
			}

			if !yes {
				prompter := cli.NewPrompter(cmd.InOrStdin(), out)
				defer prompter.Close()
				if err := prompter.Require(ctx, fmt.Sprintf("Delete category %q and its budget limits?", cat.Name)); err != nil {
					return err
				}
			}

			manager, err := store.NewCheckpointManager()
			if err != nil {
				return fmt.Errorf("failed to create checkpoint manager: %w", err)
			}
			if _, err := manager.AutoCheckpoint(ctx, "category-delete"); err != nil {
				slog.Warn("continuing without checkpoint", "error", err)
			}

			err = store.DeleteCategory(ctx, cat.ID)
			if errors.Is(err, storage.ErrCategoryInUse) {
				return categoryInUseError(cat.Name, err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", cat.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func styleType(t model.CategoryType) string {
	if t == model.CategoryTypeIncome {
		return cli.IncomeStyle.Render(string(t))
	}
	return cli.ExpenseStyle.Render(string(t))
}

func categoryInUseError(name string, err error) error {
	return common.NewUserError(fmt.Sprintf("Category %q still has operations; delete or move them first", name), err)
}
