package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/finlens/backend/internal/analysis"
	"github.com/finlens/backend/internal/api"
	"github.com/finlens/backend/internal/api/handlers"
	"github.com/finlens/backend/internal/scheduler"
	"github.com/finlens/backend/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Start the analytics REST API server.

Endpoints:
  GET  /health
  GET  /api/v1/entities
  GET  /api/v1/entities/{entity}/periods
  GET  /api/v1/entities/{entity}/snapshots/{period}
  GET  /api/v1/entities/{entity}/report
  GET  /api/v1/entities/{entity}/trends/{metric}
  GET  /api/v1/entities/{entity}/warnings
  GET  /api/v1/entities/{entity}/valuation
  GET  /api/v1/entities/{entity}/scores/earnings
  POST /api/v1/peers/normalize
  POST /api/v1/peers/compare
  POST /api/v1/peers/factors
  POST /api/v1/scores/management

Example:
  go run ./cmd/finlens api
  go run ./cmd/finlens api --port 8084`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, log, profile, source, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	if apiPort != "" {
		cfg.Port = apiPort
	}

	handler := handlers.NewAnalyticsHandler(source, profile, log)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	router := api.NewRouter(handler, limiter, log)
	server := api.New(cfg, log, router)

	// SCHEDULE_ENABLED runs the batch analysis job inside the server
	// process, so a single deployment serves and refreshes reports.
	if cfg.ScheduleEnabled {
		builder := analysis.NewBuilder(source, profile, log)
		outputDir := filepath.Join(filepath.Dir(cfg.DataDir), "reports")
		job := jobs.NewAnalysisJob(builder, outputDir, cfg.ScheduleSpec, log)

		sched := scheduler.New(log)
		if err := sched.AddJob(job); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		log.WithField("schedule", cfg.ScheduleSpec).Info("Embedded batch scheduler enabled")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
