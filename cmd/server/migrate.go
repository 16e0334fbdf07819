package main

import (
	"github.com/designdesk/task-desk-api/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := bootstrap(opts)
			if err != nil {
				return err
			}
			if err := database.Migrate(log); err != nil {
				return err
			}
			log.Info("Migrations applied")
			return nil
		},
	}
}
