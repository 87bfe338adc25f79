package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/analysis"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/api"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health        - Health check
  GET  /api/result    - Latest full analysis result
  GET  /api/ranking   - Latest fundamental ranking
  GET  /api/momentum  - Latest momentum figures
  POST /api/analyze   - Trigger a new analysis run

Example:
  go run ./cmd/jpxpred api
  go run ./cmd/jpxpred api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	store := analysis.NewStore()
	analysisHandler := handlers.NewAnalysisHandler(store, d.pipeline, d.log)
	router := api.NewRouter(analysisHandler, d.log)
	server := api.New(d.cfg, d.log, router)

	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
