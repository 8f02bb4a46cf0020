package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rickgao/pricefeed/internal/api"
	"github.com/rickgao/pricefeed/internal/config"
	"github.com/rickgao/pricefeed/internal/database"
	"github.com/rickgao/pricefeed/internal/dedup"
	"github.com/rickgao/pricefeed/internal/hub"
	"github.com/rickgao/pricefeed/internal/lookup"
	"github.com/rickgao/pricefeed/internal/metrics"
	"github.com/rickgao/pricefeed/internal/provider"
	"github.com/rickgao/pricefeed/internal/server"
	"github.com/rickgao/pricefeed/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (empty: environment only)")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting pricefeed",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Shared dedup cache
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open cache", "backend", cfg.Cache.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Optional database
	deps := server.Deps{Cache: store, Metrics: reg}
	providers := provider.NewRepository(nil)
	if cfg.Database.Configured() {
		logger.Info("connecting to database", "dsn", database.Redact(database.BuildConnString(cfg.Database)))
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		providers = provider.NewRepository(pool)
		deps.Database = pool
		logger.Info("database connected")
	}
	deps.Providers = providers

	// Broadcast hub
	h := hub.New(cfg.Hub.BufferSize, logger)
	m.RegisterHub(
		func() float64 { return float64(h.Stats().Subscribers) },
		func() float64 { return float64(h.Stats().Dropped) },
	)
	deps.Hub = h

	deduper := dedup.New(dedup.Config{
		TTL:      cfg.Dedup.TTL,
		Mode:     dedup.Mode(cfg.Dedup.Mode),
		FailOpen: cfg.Dedup.FailOpen,
	}, store, m, logger)

	// Feed connectors
	manager, err := newFeedManager(ctx, cfg, deduper, h, m, logger)
	if err != nil {
		logger.Error("failed to configure feeds", "error", err)
		os.Exit(1)
	}
	deps.Feeds = manager

	// Price lookup over the same cache
	coinbase, err := api.NewCoinbaseClient(cfg.Feeds.Coinbase.RestURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Lookup.Timeout),
		api.WithRetries(cfg.Lookup.MaxRetries, cfg.Lookup.RetryBackoff),
		api.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		logger.Error("invalid coinbase rest url", "error", err)
		os.Exit(1)
	}
	lookupCfg, err := newLookupConfig(cfg.Lookup)
	if err != nil {
		logger.Error("invalid lookup config", "error", err)
		os.Exit(1)
	}
	deps.Lookup = lookup.New(lookupCfg, store, coinbase, m, logger)

	// HTTP front door
	srv := server.New(server.Config{
		PingInterval: cfg.Server.PingInterval,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, deps, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("starting http server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	feedErr := make(chan error, 1)
	go func() {
		feedErr <- manager.Run(ctx)
	}()

	logger.Info("pricefeed running",
		"connectors", manager.Stats().Total,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-feedErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("feeds stopped", "error", err)
			exitCode = 1
		}
		cancel()
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Closing the hub ends every push connection's write loop.
	h.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}

	select {
	case <-feedErr:
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout, feeds still stopping")
	}

	logger.Info("pricefeed stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
