package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/pricefeed/internal/connection"
	"github.com/rickgao/pricefeed/internal/metrics"
	"github.com/rickgao/pricefeed/internal/model"
	"github.com/rickgao/pricefeed/internal/partition"
)

// DefaultReconnectDelay is the fixed wait between sessions.
const DefaultReconnectDelay = 5 * time.Second

// Publisher receives ticks that passed deduplication.
type Publisher interface {
	Publish(tick model.Tick)
}

// Checker decides whether a tick should be published.
type Checker interface {
	Check(ctx context.Context, tick model.Tick) (bool, error)
}

// DialFunc creates a WebSocket client. Tests swap it out.
type DialFunc func(cfg connection.ClientConfig, logger *slog.Logger) connection.Client

// Config configures a Connector.
type Config struct {
	ReconnectDelay time.Duration
	Client         connection.ClientConfig
}

// DefaultConfig returns a fixed 5 second reconnect delay and default client
// settings.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay: DefaultReconnectDelay,
		Client:         connection.DefaultClientConfig(),
	}
}

// ConnectorStats is a snapshot of one connector.
type ConnectorStats struct {
	Source     model.Source `json:"source"`
	Group      int          `json:"group"`
	Streams    int          `json:"streams"`
	Connected  bool         `json:"connected"`
	Sessions   uint64       `json:"sessions"`
	Received   uint64       `json:"received"`
	Published  uint64       `json:"published"`
	Suppressed uint64       `json:"suppressed"`
	Unmapped   uint64       `json:"unmapped"`
	Errors     uint64       `json:"errors"`
	LastError  string       `json:"last_error,omitempty"`
}

// Connector maintains one upstream session for one group of streams. Only
// mapped ticks are published; unmapped symbols are skipped.
type Connector struct {
	cfg     Config
	src     Source
	group   partition.Group
	dedup   Checker
	pub     Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	dial    DialFunc

	connected  atomic.Bool
	sessions   atomic.Uint64
	received   atomic.Uint64
	published  atomic.Uint64
	suppressed atomic.Uint64
	unmapped   atomic.Uint64
	errors     atomic.Uint64

	mu           sync.Mutex
	lastErr      error
	warnedSymbol map[string]struct{}
}

// NewConnector creates a connector for group on src.
func NewConnector(cfg Config, src Source, group partition.Group, dedup Checker, pub Publisher, m *metrics.Metrics, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	return &Connector{
		cfg:     cfg,
		src:     src,
		group:   group,
		dedup:   dedup,
		pub:     pub,
		metrics: m,
		logger: logger.With(
			"component", "connector",
			"source", src.Name(),
			"group", group.ID,
		),
		dial:         connection.NewClient,
		warnedSymbol: make(map[string]struct{}),
	}
}

// WithDialer replaces the client constructor.
func (c *Connector) WithDialer(dial DialFunc) *Connector {
	c.dial = dial
	return c
}

// Run connects and reconnects until ctx is canceled. It returns ctx.Err() on
// cancellation, or an error when the endpoint cannot be built.
func (c *Connector) Run(ctx context.Context) error {
	endpoint, err := c.src.Endpoint(c.group)
	if err != nil {
		return fmt.Errorf("%s group %d: %w", c.src.Name(), c.group.ID, err)
	}
	subscribe, err := c.src.SubscribeMessage(c.group)
	if err != nil {
		return fmt.Errorf("%s group %d: build subscribe: %w", c.src.Name(), c.group.ID, err)
	}

	c.logger.Info("connector starting",
		"endpoint", endpoint,
		"streams", c.group.Len(),
	)

	for {
		err := c.session(ctx, endpoint, subscribe)
		if ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return ctx.Err()
		}

		c.metrics.RecordReconnect(c.src.Name())
		if connection.IsCloseFrame(err) {
			c.logger.Info("session closed by server, reconnecting",
				"reason", err,
				"retry_in", c.cfg.ReconnectDelay,
			)
		} else {
			c.setError(err)
			c.logger.Warn("feed session ended",
				"error", err,
				"retry_in", c.cfg.ReconnectDelay,
			)
		}

		select {
		case <-ctx.Done():
			c.logger.Info("connector stopped")
			return ctx.Err()
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

// session runs a single connection until it fails. The returned error is
// never nil unless ctx was canceled.
func (c *Connector) session(ctx context.Context, endpoint string, subscribe []byte) error {
	clientCfg := c.cfg.Client
	clientCfg.URL = endpoint

	client := c.dial(clientCfg, c.logger)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() {
		client.Close()
		c.connected.Store(false)
		c.metrics.SetConnected(c.src.Name(), false)
	}()

	if err := client.Send(subscribe); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	c.sessions.Add(1)
	c.connected.Store(true)
	c.metrics.SetConnected(c.src.Name(), true)
	c.logger.Info("connected", "endpoint", endpoint)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-client.Errors():
			c.drain(ctx, client)
			if connection.IsCloseFrame(err) {
				return fmt.Errorf("closed by server: %w", err)
			}
			return fmt.Errorf("read: %w", err)
		case msg := <-client.Messages():
			if !msg.IsText() {
				continue
			}
			if err := c.handleFrame(ctx, msg.Data); err != nil {
				return err
			}
		}
	}
}

// handleFrame decodes one frame and runs the resulting tick through
// deduplication. A tick whose symbol cannot be split into base and quote is
// skipped: it is counted as unmapped, warned about once per symbol, and never
// reaches the dedup check or the hub. A returned error ends the session.
func (c *Connector) handleFrame(ctx context.Context, data []byte) error {
	name := c.src.Name()

	msg, ok, err := c.src.Decode(data)
	if err != nil {
		c.metrics.RecordDecodeError(name)
		return err
	}
	if !ok {
		return nil
	}

	c.received.Add(1)
	c.metrics.RecordTickReceived(name)

	tick := c.src.Normalize(msg)
	if !tick.Mapped() {
		c.unmapped.Add(1)
		c.metrics.RecordTickUnmapped(name)
		c.warnUnmapped(msg.Symbol)
		return nil
	}

	publish, err := c.dedup.Check(ctx, tick)
	if err != nil {
		// The deduper already logged and picked a fail-open/closed decision.
		c.errors.Add(1)
	}
	if !publish {
		c.suppressed.Add(1)
		return nil
	}

	c.pub.Publish(tick)
	c.published.Add(1)
	c.metrics.RecordTickPublished(name)
	c.logger.Debug("published", "tick", tick.String())
	return nil
}

// drain handles frames that were buffered before the read loop failed.
func (c *Connector) drain(ctx context.Context, client connection.Client) {
	for {
		select {
		case msg := <-client.Messages():
			if !msg.IsText() {
				continue
			}
			if err := c.handleFrame(ctx, msg.Data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Connector) warnUnmapped(symbol string) {
	c.mu.Lock()
	_, seen := c.warnedSymbol[symbol]
	if !seen {
		c.warnedSymbol[symbol] = struct{}{}
	}
	c.mu.Unlock()

	if !seen {
		c.logger.Warn("unmapped symbol, skipping", "symbol", symbol)
	}
}

func (c *Connector) setError(err error) {
	if err == nil {
		return
	}
	c.errors.Add(1)
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// Connected reports whether a session is currently live.
func (c *Connector) Connected() bool {
	return c.connected.Load()
}

// Stats returns a snapshot of the connector's counters.
func (c *Connector) Stats() ConnectorStats {
	s := ConnectorStats{
		Source:     c.src.Name(),
		Group:      c.group.ID,
		Streams:    c.group.Len(),
		Connected:  c.connected.Load(),
		Sessions:   c.sessions.Load(),
		Received:   c.received.Load(),
		Published:  c.published.Load(),
		Suppressed: c.suppressed.Load(),
		Unmapped:   c.unmapped.Load(),
		Errors:     c.errors.Load(),
	}
	c.mu.Lock()
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	c.mu.Unlock()
	return s
}

// IsFatal reports whether err from Run means the connector can never start.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidEndpoint)
}
