package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/decision-queue/internal/cli"
	"github.com/Veraticus/decision-queue/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
				"Database %s is at schema version %d", settings.DatabasePath, storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
