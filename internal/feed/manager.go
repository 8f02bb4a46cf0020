package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ManagerStats summarizes all connectors.
type ManagerStats struct {
	Connected  int              `json:"connected"`
	Total      int              `json:"total"`
	Connectors []ConnectorStats `json:"connectors"`
}

// Manager runs a set of connectors side by side.
type Manager struct {
	logger *slog.Logger

	mu         sync.RWMutex
	connectors []*Connector
	running    bool
}

// NewManager creates an empty manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With("component", "feed_manager")}
}

// Add registers a connector. It must be called before Run.
func (m *Manager) Add(c *Connector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("feed manager already running")
	}
	m.connectors = append(m.connectors, c)
	return nil
}

// Run starts every connector and blocks until ctx is canceled. A connector
// that cannot be configured cancels the others and its error is returned.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("feed manager already running")
	}
	m.running = true
	connectors := append([]*Connector(nil), m.connectors...)
	m.mu.Unlock()

	if len(connectors) == 0 {
		return errors.New("no connectors configured")
	}

	m.logger.Info("starting connectors", "count", len(connectors))

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range connectors {
		g.Go(func() error {
			err := c.Run(gctx)
			if IsFatal(err) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("feed manager: %w", err)
	}
	m.logger.Info("all connectors stopped")
	return ctx.Err()
}

// Stats returns a snapshot across connectors.
func (m *Manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := ManagerStats{
		Total:      len(m.connectors),
		Connectors: make([]ConnectorStats, 0, len(m.connectors)),
	}
	for _, c := range m.connectors {
		s := c.Stats()
		if s.Connected {
			stats.Connected++
		}
		stats.Connectors = append(stats.Connectors, s)
	}
	return stats
}
