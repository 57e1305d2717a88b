/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the reinsurance engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (file + RE_* environment)
  3. Build the logger
  4. Load and compile the default commission bands, and the scenario
     risk band table, if configured
  5. Create API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (default: none, environment and defaults only)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Exit

EXAMPLES:
  # Run with defaults
  ./server

  # Run with a config file
  ./server -config=./config.yaml

  # Lenient policy counts, different port
  RE_NETTING_STRICT_POLICY_COUNTS=false RE_SERVER_HTTP_ADDR=:3000 ./server

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/actuarial/reinsurance-engine/api"
	"github.com/actuarial/reinsurance-engine/commission"
	"github.com/actuarial/reinsurance-engine/config"
	"github.com/actuarial/reinsurance-engine/factory"
	"github.com/actuarial/reinsurance-engine/logging"
	"github.com/actuarial/reinsurance-engine/netting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	// calculation ids are drawn per request
	uuid.EnableRandPool()

	var schedule *commission.Schedule
	if cfg.Commission.BandsFile != "" {
		bands, err := factory.NewTableFactory().LoadBandsFile(cfg.Commission.BandsFile)
		if err != nil {
			return err
		}
		if schedule, err = commission.Compile(bands); err != nil {
			return fmt.Errorf("%s: %w", cfg.Commission.BandsFile, err)
		}
		logger.Info("default commission bands loaded",
			zap.String("file", cfg.Commission.BandsFile),
			zap.Int("bands", len(bands)))
	}

	var riskBands *factory.RiskBandTable
	if cfg.Scenarios.RiskBandsFile != "" {
		if riskBands, err = factory.NewTableFactory().LoadRiskBandsFile(cfg.Scenarios.RiskBandsFile); err != nil {
			return err
		}
		logger.Info("scenario risk bands loaded",
			zap.String("file", cfg.Scenarios.RiskBandsFile),
			zap.Int("bands", len(riskBands.Bands)))
	}

	calculator := netting.NewCalculator(
		netting.WithMode(cfg.Netting.Mode()),
		netting.WithLogger(logger.Named("netting")),
	)

	handler := api.NewHandler(api.Config{
		Calculator:      calculator,
		DefaultSchedule: schedule,
		Additive:        cfg.Commission.Additive,
		MaxParallel:     cfg.Batch.MaxParallel,
		MaxPeriods:      cfg.Batch.MaxPeriods,
		RiskBands:       riskBands,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Logger:          logger.Named("api"),
	})

	server := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.HTTPAddr),
			zap.String("policy_counts", cfg.Netting.Mode().String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
