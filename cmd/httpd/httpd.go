// Package httpd implements the HTTP server for the lead generation
// service. It wires configuration, storage, the campaign scheduler,
// notification sinks, and the API router together, and runs the server
// until interrupted.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/goleads/internal/api"
	"github.com/jonesrussell/goleads/internal/config"
	"github.com/jonesrussell/goleads/internal/logger"
	"github.com/jonesrussell/goleads/internal/metrics"
)

const (
	errorChannelBufferSize  = 1
	signalChannelBufferSize = 1
	defaultShutdownTimeout  = 30 * time.Second
)

// Command returns the httpd cobra command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Start the lead generation HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Start()
		},
	}
}

// Start starts the HTTP server and runs until interrupted. It handles
// graceful shutdown on SIGINT or SIGTERM.
func Start() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	deps, err := buildDeps(cfg, log, m)
	if err != nil {
		return err
	}
	defer deps.close()

	ctx := context.Background()
	if restoreErr := deps.restore(ctx); restoreErr != nil {
		return restoreErr
	}

	deps.broker.Start(ctx)

	router := api.NewRouter(api.RouterParams{
		Logger:    log,
		Campaigns: api.NewCampaignsHandler(deps.scheduler, cfg.PlatformNames(), cfg.Scheduler.DefaultInterval),
		Leads:     api.NewLeadsHandler(deps.aggregator),
		Broker:    deps.broker,
		Gatherer:  registry,
		Targets:   cfg.Targets,
		Platforms: cfg.PlatformNames(),
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info("Starting HTTP server",
		logger.String("addr", cfg.Server.Address),
		logger.String("scrape_mode", cfg.Scrape.Mode),
		logger.Strings("platforms", cfg.PlatformNames()),
	)

	errChan := make(chan error, errorChannelBufferSize)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	return runUntilInterrupt(log, server, deps, errChan)
}

// runUntilInterrupt blocks until a shutdown signal or a server error.
func runUntilInterrupt(log logger.Logger, server *http.Server, deps *serverDeps, errChan chan error) error {
	sigChan := make(chan os.Signal, signalChannelBufferSize)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case serverErr := <-errChan:
		log.Error("Server error", logger.Error(serverErr))
		return fmt.Errorf("server error: %w", serverErr)
	case sig := <-sigChan:
		return shutdown(log, server, deps, sig)
	}
}

// shutdown performs graceful shutdown: scheduler first so polling
// loops drain, then the SSE broker, then the HTTP server.
func shutdown(log logger.Logger, server *http.Server, deps *serverDeps, sig os.Signal) error {
	log.Info("Shutdown signal received", logger.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	log.Info("Stopping campaign scheduler")
	deps.scheduler.Shutdown(shutdownCtx)

	log.Info("Stopping SSE broker")
	deps.broker.Stop()

	log.Info("Stopping HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to stop server", logger.Error(err))
		return fmt.Errorf("stop server: %w", err)
	}

	log.Info("Server stopped successfully")
	return nil
}
