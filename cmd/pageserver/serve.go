package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"page-server/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the page over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, cfg)
	},
}
