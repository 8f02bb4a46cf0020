package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/pricefeed/internal/feed"
	"github.com/rickgao/pricefeed/internal/hub"
	"github.com/rickgao/pricefeed/internal/lookup"
	"github.com/rickgao/pricefeed/internal/provider"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Broadcaster hands out tick subscriptions.
type Broadcaster interface {
	Subscribe() *hub.Subscription
	Stats() hub.Stats
}

// FeedStats reports connector state.
type FeedStats interface {
	Stats() feed.ManagerStats
}

// PriceLookup answers /price.
type PriceLookup interface {
	TickerPrice(ctx context.Context, base, quote string) (lookup.Quote, error)
}

// ProviderLister answers /providers.
type ProviderLister interface {
	Available() bool
	List(ctx context.Context) ([]provider.Provider, error)
}

// Deps are the components the handlers read from. Database is nil when no
// database is configured.
type Deps struct {
	Cache     Pinger
	Database  Pinger
	Feeds     FeedStats
	Hub       Broadcaster
	Lookup    PriceLookup
	Providers ProviderLister
	Metrics   prometheus.Gatherer
}

// Config tunes the push channel.
type Config struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a 30s ping interval and 10s write timeout.
func DefaultConfig() Config {
	return Config{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg      Config
	deps     Deps
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a Server.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(s.logger))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handlePush)
	r.Get("/price", s.handlePrice)
	r.Get("/providers", s.handleProviders)
	r.Get("/debug/connections", s.handleConnections)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}

	return r
}
