// Package cli implements the operator command line: schema migration, link
// management and token minting against the configured store.
package cli

import (
	"os"

	"shortener-backend/internal/app"
	"shortener-backend/internal/config"
	"shortener-backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
}

// NewRootCmd builds the command tree. Output goes to cmd.OutOrStdout().
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "shortener",
		Short:         "Operate the URL shortener store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config/local.yml"
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultPath, "path to the YAML config file")

	root.AddCommand(
		newMigrateCmd(opts),
		newCreateCmd(opts),
		newListCmd(opts),
		newStatsCmd(opts),
		newDeleteCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// open loads the config and wires the application without starting the HTTP
// server or the retry workers. Clicks are never recorded from the CLI.
func (o *options) open() (*app.App, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.Env)

	a, err := app.New(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return a, log, nil
}
