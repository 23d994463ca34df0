package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/pocketbook/internal/cli"
	"github.com/Veraticus/pocketbook/internal/storage"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the database",
		Long: `Create the database file if needed, apply pending schema migrations and
seed the default categories into a new database. Running it again is safe;
existing data is left untouched and deleted defaults are not recreated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			categories, err := store.GetCategories(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess("Database ready"))
			fmt.Fprintf(out, "  Path:           %s\n", store.Path())
			fmt.Fprintf(out, "  Schema version: %d/%d\n", version, storage.ExpectedSchemaVersion)
			fmt.Fprintf(out, "  Categories:     %d\n", len(categories))
			return nil
		},
	}
}
