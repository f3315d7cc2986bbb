package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/invoxhq/invox/internal/config"
	"github.com/invoxhq/invox/internal/home"
	"github.com/invoxhq/invox/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Invox server",
	Long: `Start the Invox HTTP server.

On first run a default config.yaml is written to the invox home directory.
The config file is watched; most settings (model, column headers, cache TTL,
mock mode) take effect without a restart.

The server provides:
  - /health            - Basic server health check
  - /ready             - Readiness check
  - /api/extract       - Invoice PDF extraction
  - /api/invoices/...  - Pricing preview and import

Examples:
  invox serve                    # Start on default port 8080
  invox serve --port 3000        # Start on custom port
  invox serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Seed a default config on first run so the home config path is
		// picked up and watchable.
		if cfgFile == "" && !h.ConfigExists() {
			if err := config.WriteDefault(h.ConfigPath()); err != nil {
				return err
			}
			logger.Info("wrote default config", "path", h.ConfigPath())
		}

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		// Create server
		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: cm,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
