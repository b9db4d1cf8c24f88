package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spotterai/spotter/internal/config"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spotterd",
		Short:         "Trip planning and Hours-of-Service compliance service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML settings file")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newCollectStaticCmd())
	cmd.AddCommand(newRoutesCmd())

	return cmd
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger builds the production logger: structured JSON on stdout and
// stderr, no buffering in front of the container runtime.
func newLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}
