package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/quill/internal/app"
	"github.com/MrSnakeDoc/quill/internal/config"
)

// startServer runs the server until ctx ends. Tests swap it out.
var startServer = func(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the content collection over HTTP (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, err := contentConfig(opts, nil)
	if err != nil {
		return err
	}
	return startServer(cmd.Context(), cfg)
}
