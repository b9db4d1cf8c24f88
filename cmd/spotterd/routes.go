package main

import (
	"fmt"

	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spotterai/spotter/internal/config"
	"github.com/spotterai/spotter/internal/server"
)

// newRoutesCmd generates markdown docs for the router definition. The
// app is wired against no database; building the router does not touch
// storage.
func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Generate router documentation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Dev = true

			app, err := server.New(cfg, zap.NewNop().Sugar(), nil, nil)
			if err != nil {
				return err
			}

			fmt.Println(docgen.MarkdownRoutesDoc(app.Router(), docgen.MarkdownOpts{
				ProjectPath: "github.com/spotterai/spotter",
				Intro:       "spotter API route documentation.",
			}))

			return nil
		},
	}
}
