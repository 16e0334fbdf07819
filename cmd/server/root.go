package main

import (
	"github.com/designdesk/task-desk-api/internal/config"
	"github.com/designdesk/task-desk-api/internal/database"
	"github.com/designdesk/task-desk-api/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Design studio task desk API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a config file (yaml, json, toml or env)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newGrantAdminCmd(opts),
	)
	return cmd
}

// bootstrap loads the configuration, builds the logger and opens the database.
func bootstrap(opts *rootOptions) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, nil, err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := database.Connect(cfg, log); err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
