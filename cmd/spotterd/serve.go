package main

import (
	"github.com/spf13/cobra"

	"github.com/spotterai/spotter/internal/auth"
	"github.com/spotterai/spotter/internal/config"
	"github.com/spotterai/spotter/internal/database"
	"github.com/spotterai/spotter/internal/server"
)

// nolint
func newServeCmd() *cobra.Command {
	var (
		addr       string
		diagAddr   string
		dbPath     string
		tokenDB    string
		secret     string
		orsKey     string
		staticRoot string
		dev        bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			applyFlag(cmd, "addr", func() { cfg.Addr = addr })
			applyFlag(cmd, "diag-addr", func() { cfg.DiagAddr = diagAddr })
			applyFlag(cmd, "db", func() { cfg.DBPath = dbPath })
			applyFlag(cmd, "token-db", func() { cfg.TokenDBPath = tokenDB })
			applyFlag(cmd, "secret", func() { cfg.SecretKey = secret })
			applyFlag(cmd, "ors-key", func() { cfg.ORSKey = orsKey })
			applyFlag(cmd, "static-root", func() { cfg.StaticRoot = staticRoot })
			applyFlag(cmd, "dev", func() { cfg.Dev = dev })

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() // flushes buffer, if any

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if cfg.AutoMigrate {
				if err := database.Migrate(cmd.Context(), db); err != nil {
					return err
				}
			}

			revoked, err := auth.OpenRevocationStore(cfg.TokenDBPath)
			if err != nil {
				return err
			}
			defer revoked.Close()

			app, err := server.New(cfg, logger, db, revoked)
			if err != nil {
				return err
			}

			return app.Run(cmd.Context())
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVar(&addr, "addr", defaults.Addr, "application port")
	cmd.Flags().StringVar(&diagAddr, "diag-addr", defaults.DiagAddr, "diag port")
	cmd.Flags().StringVar(&dbPath, "db", defaults.DBPath, "sqlite database path")
	cmd.Flags().StringVar(&tokenDB, "token-db", defaults.TokenDBPath, "token revocation store path")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret")
	cmd.Flags().StringVar(&orsKey, "ors-key", "", "OpenRouteService API key")
	cmd.Flags().StringVar(&staticRoot, "static-root", "", "collected static assets directory")
	cmd.Flags().BoolVar(&dev, "dev", false, "relax secret requirements for local development")

	return cmd
}

func applyFlag(cmd *cobra.Command, name string, apply func()) {
	if cmd.Flags().Changed(name) {
		apply()
	}
}
