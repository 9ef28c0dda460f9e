// Mock Flights Feed Server
// Runs one simulation and serves its feed over REST + WebSocket
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unklstewy/mockflights/internal/logging"
	"github.com/unklstewy/mockflights/internal/server"
	"github.com/unklstewy/mockflights/pkg/config"
	"github.com/unklstewy/mockflights/pkg/flightsim"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	port       = flag.String("port", "", "HTTP server port (overrides config)")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "feed-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := flightsim.New(flightsim.WithLogger(logger))
	if err := sim.Start(ctx); err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}
	defer sim.Stop()

	srv := server.New(sim, cfg, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Feed server listening",
			zap.String("addr", httpServer.Addr),
			zap.String("run_id", sim.ID()),
			zap.Int("flights", flightsim.ObjectCount),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-sim.Done():
			// The feed stays readable after the run ends until it drains
			logger.Info("Simulation finished, serving remaining feed",
				zap.Uint64("ticks", sim.Status().Ticks))
			<-gctx.Done()
		case <-gctx.Done():
		}

		logger.Info("Shutting down server")
		srv.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
