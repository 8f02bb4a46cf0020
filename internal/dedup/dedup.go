package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/pricefeed/internal/cache"
	"github.com/rickgao/pricefeed/internal/metrics"
	"github.com/rickgao/pricefeed/internal/model"
)

// Mode selects the store operation used for the check.
type Mode string

const (
	ModeFirstSeen Mode = "first_seen"
	ModeOnChange  Mode = "on_change"
)

// Config configures a Deduper.
type Config struct {
	TTL      time.Duration
	Mode     Mode
	FailOpen bool
}

// DefaultConfig returns a 20 second first_seen window, failing closed.
func DefaultConfig() Config {
	return Config{
		TTL:  20 * time.Second,
		Mode: ModeFirstSeen,
	}
}

// Deduper filters ticks against the cache store. It is safe for concurrent use
// as long as the store is.
type Deduper struct {
	cfg     Config
	store   cache.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Deduper. An empty mode falls back to first_seen.
func New(cfg Config, store cache.Store, m *metrics.Metrics, logger *slog.Logger) *Deduper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeFirstSeen
	}
	return &Deduper{
		cfg:     cfg,
		store:   store,
		metrics: m,
		logger:  logger.With("component", "dedup"),
	}
}

// Check records tick in the store and reports whether it should be published.
// On a store error the decision follows FailOpen and the error is returned
// alongside it.
func (d *Deduper) Check(ctx context.Context, tick model.Tick) (bool, error) {
	key := tick.Key()

	var (
		prev  string
		found bool
		err   error
	)
	switch d.cfg.Mode {
	case ModeOnChange:
		prev, found, err = d.store.SwapIfChanged(ctx, key, tick.Price, d.cfg.TTL)
	default:
		prev, found, err = d.store.SetIfAbsent(ctx, key, tick.Price, d.cfg.TTL)
	}

	if err != nil {
		d.metrics.RecordCacheError(tick.Source)
		d.logger.Warn("dedup check failed",
			"key", key,
			"fail_open", d.cfg.FailOpen,
			"error", err,
		)
		return d.cfg.FailOpen, fmt.Errorf("check %s: %w", key, err)
	}

	publish := !found
	if d.cfg.Mode == ModeOnChange && found && prev != tick.Price {
		publish = true
	}

	if !publish {
		d.metrics.RecordTickSuppressed(tick.Source)
	}
	return publish, nil
}
