package cmd

import (
	"fmt"
	"os"

	"github.com/nagorik/grievance-server/internal/config"
	"github.com/nagorik/grievance-server/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd starts the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the grievance API server",
	Run: func(cmd *cobra.Command, args []string) {
		// Initialize structured logger
		logger, _ := zap.NewProduction()
		defer logger.Sync()
		sugar := logger.Sugar()

		// Load configuration from environment
		cfg, err := config.Load()
		if err != nil {
			sugar.Fatalf("Failed to load config: %v", err)
		}

		sugar.Infow("Starting grievance server",
			"port", cfg.Port,
			"env", cfg.Environment,
		)

		srv, err := server.New(cmd.Context(), cfg, logger)
		if err != nil {
			sugar.Fatalf("Failed to build server: %v", err)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
