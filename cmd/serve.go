package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"o365sync/internal/config"
	"o365sync/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the health, config, run and metrics endpoints",
	Long: `Serve the HTTP control surface. POST /run queues a reconciliation,
GET /run returns the report of the last one. Configuration changes are
picked up between runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := newDriver()

	// Handle new requests to server.
	go driver.HandleRequests(ctx, config.Snapshot)

	// Run server to handle incoming requests.
	return server.RunServer(ctx, viper.GetString(config.ListenAddress), driver)
}
