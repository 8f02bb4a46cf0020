package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rickgao/pricefeed/internal/model"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	backends   = []string{BackendRedis, BackendMemory}
	dedupModes = []string{DedupModeFirstSeen, DedupModeOnChange}
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.PingInterval <= 0 {
		return errors.New("server.ping_interval must be > 0")
	}

	if err := oneOf("log.level", c.Log.Level, logLevels); err != nil {
		return err
	}
	if err := oneOf("log.format", c.Log.Format, logFormats); err != nil {
		return err
	}

	if err := oneOf("cache.backend", c.Cache.Backend, backends); err != nil {
		return err
	}
	if c.Cache.Backend == BackendRedis && c.Redis.URL == "" {
		return errors.New("redis.url is required when cache.backend is redis")
	}

	if c.Dedup.TTL <= 0 {
		return errors.New("dedup.ttl must be > 0")
	}
	if err := oneOf("dedup.mode", c.Dedup.Mode, dedupModes); err != nil {
		return err
	}

	if err := c.Feeds.validate(); err != nil {
		return err
	}

	if c.Hub.BufferSize < 1 {
		return errors.New("hub.buffer_size must be >= 1")
	}

	for i, name := range c.Lookup.Sources {
		if _, err := model.ParseSource(name); err != nil {
			return fmt.Errorf("lookup.sources[%d]: %w", i, err)
		}
	}
	if c.Lookup.MaxRetries < 0 {
		return errors.New("lookup.max_retries must be >= 0")
	}

	if c.Database.Configured() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	return nil
}

func (f *FeedsConfig) validate() error {
	if f.Binance.Disabled && f.Coinbase.Disabled {
		return errors.New("feeds: at least one of binance, coinbase must be enabled")
	}
	if f.ReconnectDelay <= 0 {
		return errors.New("feeds.reconnect_delay must be > 0")
	}
	if f.BufferSize < 1 {
		return errors.New("feeds.buffer_size must be >= 1")
	}

	if !f.Binance.Disabled {
		if f.Binance.WSURL == "" {
			return errors.New("feeds.binance.ws_url is required")
		}
		if f.Binance.MaxStreamsPerConn < 1 {
			return errors.New("feeds.binance.max_streams_per_conn must be >= 1")
		}
		if len(f.Binance.Symbols) == 0 && f.Binance.RestURL == "" {
			return errors.New("feeds.binance.rest_url is required when feeds.binance.symbols is empty")
		}
	}

	if !f.Coinbase.Disabled {
		if f.Coinbase.WSURL == "" {
			return errors.New("feeds.coinbase.ws_url is required")
		}
		if f.Coinbase.MaxProductsPerConn < 1 {
			return errors.New("feeds.coinbase.max_products_per_conn must be >= 1")
		}
		for i, p := range f.Coinbase.Products {
			if !strings.Contains(p, "-") {
				return fmt.Errorf("feeds.coinbase.products[%d] must look like BASE-QUOTE, got %q", i, p)
			}
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.URL == "" {
		if db.Name == "" {
			return fmt.Errorf("%s.name is required", prefix)
		}
		if db.User == "" {
			return fmt.Errorf("%s.user is required", prefix)
		}
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func oneOf(field, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), value)
}
