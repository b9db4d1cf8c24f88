package main

import (
	"github.com/spf13/cobra"

	"github.com/spotterai/spotter/internal/staticfiles"
)

func newCollectStaticCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "collectstatic",
		Short: "Copy the embedded static assets into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return staticfiles.Collect(out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "static", "target directory for collected assets")

	return cmd
}
