package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/rickgao/pricefeed/internal/api"
	"github.com/rickgao/pricefeed/internal/cache"
	"github.com/rickgao/pricefeed/internal/config"
	"github.com/rickgao/pricefeed/internal/connection"
	"github.com/rickgao/pricefeed/internal/feed"
	"github.com/rickgao/pricefeed/internal/lookup"
	"github.com/rickgao/pricefeed/internal/metrics"
	"github.com/rickgao/pricefeed/internal/model"
	"github.com/rickgao/pricefeed/internal/partition"
	"github.com/rickgao/pricefeed/internal/version"
)

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory cache, dedup state is not shared across instances")
		return cache.NewMemoryStore(), nil
	default:
		return cache.NewRedisStore(ctx, cfg.Redis.URL, cfg.Redis.Password, logger)
	}
}

func newLookupConfig(cfg config.LookupConfig) (lookup.Config, error) {
	out := lookup.DefaultConfig()
	out.Sources = out.Sources[:0]
	for _, name := range cfg.Sources {
		src, err := model.ParseSource(name)
		if err != nil {
			return lookup.Config{}, err
		}
		out.Sources = append(out.Sources, src)
	}
	return out, nil
}

// newFeedManager resolves each exchange's subscription universe, partitions it
// and registers one connector per group.
func newFeedManager(ctx context.Context, cfg *config.Config, checker feed.Checker, pub feed.Publisher, m *metrics.Metrics, logger *slog.Logger) (*feed.Manager, error) {
	fc := cfg.Feeds
	connCfg := feed.Config{
		ReconnectDelay: fc.ReconnectDelay,
		Client: connection.ClientConfig{
			Header:           http.Header{"User-Agent": []string{version.UserAgent()}},
			HandshakeTimeout: fc.HandshakeTimeout,
			PingInterval:     fc.PingInterval,
			PingTimeout:      fc.PingTimeout,
			BufferSize:       fc.BufferSize,
		},
	}

	manager := feed.NewManager(logger)
	add := func(src feed.Source, groups []partition.Group) error {
		for _, g := range groups {
			if err := manager.Add(feed.NewConnector(connCfg, src, g, checker, pub, m, logger)); err != nil {
				return err
			}
		}
		logger.Info("feed configured", "source", src.Name(), "groups", len(groups))
		return nil
	}

	if !fc.Binance.Disabled {
		symbols := fc.Binance.Symbols
		if len(symbols) == 0 {
			universe := api.NewBinanceUniverse(fc.Binance.RestURL, cfg.Lookup.Timeout, logger)
			var err error
			symbols, err = universe.Symbols(ctx, fc.Binance.QuoteAssets)
			if err != nil {
				return nil, fmt.Errorf("load binance symbols: %w", err)
			}
		}
		groups, err := partition.Build(symbols, fc.Binance.StreamSuffix, fc.Binance.MaxStreamsPerConn)
		if err != nil {
			return nil, fmt.Errorf("partition binance symbols: %w", err)
		}
		if err := add(feed.NewBinanceSource(fc.Binance.WSURL), groups); err != nil {
			return nil, err
		}
	}

	if !fc.Coinbase.Disabled {
		products := make([]string, len(fc.Coinbase.Products))
		for i, p := range fc.Coinbase.Products {
			products[i] = strings.ToUpper(p)
		}
		groups, err := partition.FromStreams(products, fc.Coinbase.MaxProductsPerConn)
		if err != nil {
			return nil, fmt.Errorf("partition coinbase products: %w", err)
		}
		if err := add(feed.NewCoinbaseSource(fc.Coinbase.WSURL), groups); err != nil {
			return nil, err
		}
	}

	return manager, nil
}
