package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iudanet/deltasync/internal/server"
	"github.com/iudanet/deltasync/internal/server/config"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.logger.Info("deltasync server starting",
				"version", Version,
				"addr", a.cfg.HTTP.Addr,
				"db_driver", a.cfg.DB.Driver,
			)

			svc, closeStore, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			return server.New(a.cfg, a.logger, svc, Version).Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "HTTP listen address")
	_ = a.v.BindPFlag(config.KeyHTTPAddr, cmd.Flags().Lookup("addr"))

	return cmd
}
