package main

import (
	"fmt"

	"github.com/designdesk/task-desk-api/internal/database"
	"github.com/designdesk/task-desk-api/internal/repository"
	"github.com/designdesk/task-desk-api/internal/services"
	"github.com/spf13/cobra"
)

func newGrantAdminCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Give an existing account the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(opts)
			if err != nil {
				return err
			}

			authService := services.NewAuthService(repository.NewUserRepository(database.GetDB()), cfg.AdminEmails)
			user, err := authService.GrantAdmin(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to grant admin role to %s: %w", args[0], err)
			}

			log.WithField("user_id", user.ID).Info("Admin role granted")
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", user.Email)
			return nil
		},
	}
}
