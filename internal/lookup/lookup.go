// Package lookup answers one-off price queries from the dedup cache, falling
// back to a direct REST fetch when no connector has a live price.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/pricefeed/internal/metrics"
	"github.com/rickgao/pricefeed/internal/model"
)

var (
	// ErrInvalidPair is returned when base or quote is empty.
	ErrInvalidPair = errors.New("invalid pair")

	// ErrPriceUnavailable is returned when neither the cache nor the fetcher
	// produced a price.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// Getter reads cached prices. cache.Store satisfies it.
type Getter interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Fetcher retrieves a price directly from an exchange.
type Fetcher interface {
	FetchPrice(ctx context.Context, base, quote string) (string, error)
}

// Quote is the answer to a price lookup.
type Quote struct {
	Base   string       `json:"base"`
	Quote  string       `json:"quote"`
	Price  string       `json:"price"`
	Source model.Source `json:"source"`
	Cached bool         `json:"cached"`
}

// Config configures a Service.
type Config struct {
	// Sources are the cache namespaces checked in order.
	Sources []model.Source

	// FetchSource labels prices returned by the fetcher.
	FetchSource model.Source
}

// DefaultConfig checks Coinbase then Binance and labels fetched prices as
// Coinbase.
func DefaultConfig() Config {
	return Config{
		Sources:     []model.Source{model.SourceCoinbase, model.SourceBinance},
		FetchSource: model.SourceCoinbase,
	}
}

// Service resolves prices. It only ever reads the cache.
type Service struct {
	cfg     Config
	cache   Getter
	fetcher Fetcher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a lookup service.
func New(cfg Config, cache Getter, fetcher Fetcher, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultConfig().Sources
	}
	if cfg.FetchSource == "" {
		cfg.FetchSource = DefaultConfig().FetchSource
	}
	return &Service{
		cfg:     cfg,
		cache:   cache,
		fetcher: fetcher,
		metrics: m,
		logger:  logger.With("component", "lookup"),
	}
}

// TickerPrice returns the latest known price of base in quote.
func (s *Service) TickerPrice(ctx context.Context, base, quote string) (Quote, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if base == "" || quote == "" {
		return Quote{}, fmt.Errorf("%w: base and quote are required", ErrInvalidPair)
	}

	for _, src := range s.cfg.Sources {
		key := model.Key(src, base, quote)
		price, found, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
			continue
		}
		if found {
			s.metrics.RecordLookup(metrics.LookupCacheHit)
			return Quote{Base: base, Quote: quote, Price: price, Source: src, Cached: true}, nil
		}
	}

	start := time.Now()
	price, err := s.fetcher.FetchPrice(ctx, base, quote)
	s.metrics.RecordLookupFetch(time.Since(start))
	if err != nil {
		s.metrics.RecordLookup(metrics.LookupFailed)
		s.logger.Warn("price fetch failed", "base", base, "quote", quote, "error", err)
		return Quote{}, fmt.Errorf("%w: %s-%s: %v", ErrPriceUnavailable, base, quote, err)
	}
	if price == "" {
		s.metrics.RecordLookup(metrics.LookupFailed)
		return Quote{}, fmt.Errorf("%w: %s-%s: empty price", ErrPriceUnavailable, base, quote)
	}

	s.metrics.RecordLookup(metrics.LookupFetched)
	return Quote{Base: base, Quote: quote, Price: price, Source: s.cfg.FetchSource}, nil
}
