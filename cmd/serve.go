package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aitwy/aitwy-server/internal/app"
	"github.com/aitwy/aitwy-server/internal/server"
	"github.com/aitwy/aitwy-server/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the account HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logger.Sync()
			app.Invoke(server.StartServer).Run()
			return nil
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the account server is up",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, d *deps, _ []string) error {
			res, err := d.auth.Health(ctx)
			if err != nil {
				return err
			}
			d.printf("%s (%s)\n", res.Data.Status, res.Data.Service)
			return nil
		}),
	}
}
