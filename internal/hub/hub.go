// Package hub fans published ticks out to any number of independent
// subscribers.
//
// Each subscription owns a bounded queue. Publish never blocks: when a queue
// is full the oldest queued tick is evicted and counted as lag, so one slow
// subscriber cannot stall producers or other subscribers. Subscribers only see
// ticks published after they subscribed.
package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rickgao/pricefeed/internal/model"
)

// DefaultBufferSize is the per-subscriber queue length.
const DefaultBufferSize = 100

// Stats is a point-in-time view of the hub.
type Stats struct {
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
}

// Hub is a multi-producer, multi-consumer broadcast channel.
type Hub struct {
	bufferSize int
	logger     *slog.Logger

	mu     sync.RWMutex
	subs   map[uuid.UUID]*Subscription
	closed bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

// New creates a Hub whose subscriptions buffer up to bufferSize ticks.
func New(bufferSize int, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		bufferSize: bufferSize,
		logger:     logger.With("component", "hub"),
		subs:       make(map[uuid.UUID]*Subscription),
	}
}

// Publish delivers tick to every current subscriber without blocking.
func (h *Hub) Publish(tick model.Tick) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	h.published.Add(1)

	for _, s := range h.subs {
		s.deliver(tick, &h.dropped)
	}
}

// Subscribe registers a new subscription. Safe for concurrent use.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		id:  uuid.New(),
		hub: h,
		ch:  make(chan model.Tick, h.bufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		s.closed = true
		close(s.ch)
		return s
	}
	h.subs[s.id] = s

	h.logger.Debug("subscriber added", "id", s.id, "subscribers", len(h.subs))
	return s
}

// Stats returns current counters.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	n := len(h.subs)
	h.mu.RUnlock()

	return Stats{
		Subscribers: n,
		Published:   h.published.Load(),
		Dropped:     h.dropped.Load(),
	}
}

// Close ends every subscription. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subs {
		s.closed = true
		close(s.ch)
		delete(h.subs, id)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	delete(h.subs, s.id)
	close(s.ch)

	h.logger.Debug("subscriber removed", "id", s.id, "subscribers", len(h.subs))
}

// Subscription is one consumer's handle on the hub.
type Subscription struct {
	id  uuid.UUID
	hub *Hub
	ch  chan model.Tick

	// closed is guarded by hub.mu.
	closed bool
	lagged atomic.Uint64
}

// ID returns the subscription's unique id.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// C returns the delivery channel. It is closed when the subscription or the
// hub is closed.
func (s *Subscription) C() <-chan model.Tick {
	return s.ch
}

// Lagged returns the number of ticks lost since the previous call.
func (s *Subscription) Lagged() uint64 {
	return s.lagged.Swap(0)
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// deliver must be called with hub.mu held for reading.
func (s *Subscription) deliver(tick model.Tick, dropped *atomic.Uint64) {
	select {
	case s.ch <- tick:
		return
	default:
	}

	// Queue full: evict the oldest tick to make room.
	select {
	case <-s.ch:
		s.lagged.Add(1)
		dropped.Add(1)
	default:
	}

	select {
	case s.ch <- tick:
	default:
		s.lagged.Add(1)
		dropped.Add(1)
	}
}
