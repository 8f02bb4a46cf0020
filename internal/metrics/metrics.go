package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rickgao/pricefeed/internal/model"
)

const namespace = "pricefeed"

// Lookup results.
const (
	LookupCacheHit = "cache_hit"
	LookupFetched  = "fetched"
	LookupFailed   = "failed"
)

// Metrics holds every collector the service exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	TicksReceived   *prometheus.CounterVec
	TicksPublished  *prometheus.CounterVec
	TicksSuppressed *prometheus.CounterVec
	TicksUnmapped   *prometheus.CounterVec
	DecodeErrors    *prometheus.CounterVec
	Reconnects      *prometheus.CounterVec
	CacheErrors     *prometheus.CounterVec
	FeedConnected   *prometheus.GaugeVec

	Lookups      *prometheus.CounterVec
	LookupFetchS prometheus.Histogram

	factory promauto.Factory
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	return &Metrics{
		TicksReceived:   counter("ticks_received_total", "Ticks decoded from upstream feeds", "source"),
		TicksPublished:  counter("ticks_published_total", "Ticks published to the broadcast hub", "source"),
		TicksSuppressed: counter("ticks_suppressed_total", "Ticks suppressed as duplicates within the dedup window", "source"),
		TicksUnmapped:   counter("ticks_unmapped_total", "Ticks whose symbol could not be split into base and quote", "source"),
		DecodeErrors:    counter("decode_errors_total", "Frames that failed to decode", "source"),
		Reconnects:      counter("feed_reconnects_total", "Feed sessions that ended and were scheduled for reconnect", "source"),
		CacheErrors:     counter("cache_errors_total", "Dedup cache store errors", "source"),

		FeedConnected: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_connected",
			Help:      "Number of currently connected feed sessions",
		}, []string{"source"}),

		Lookups: counter("lookups_total", "Price lookups by result", "result"),

		LookupFetchS: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_fetch_seconds",
			Help:      "Latency of direct price fetches on cache miss",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		factory: f,
	}
}

// RegisterHub exports hub state through gauge funcs.
func (m *Metrics) RegisterHub(subscribers func() float64, dropped func() float64) {
	if m == nil {
		return
	}
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hub_subscribers",
		Help:      "Live broadcast hub subscriptions",
	}, subscribers)
	m.factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hub_dropped_total",
		Help:      "Ticks dropped or evicted from slow subscriber queues",
	}, dropped)
}

func (m *Metrics) RecordTickReceived(source model.Source) {
	if m == nil {
		return
	}
	m.TicksReceived.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) RecordTickPublished(source model.Source) {
	if m == nil {
		return
	}
	m.TicksPublished.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) RecordTickSuppressed(source model.Source) {
	if m == nil {
		return
	}
	m.TicksSuppressed.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) RecordTickUnmapped(source model.Source) {
	if m == nil {
		return
	}
	m.TicksUnmapped.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) RecordDecodeError(source model.Source) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) RecordReconnect(source model.Source) {
	if m == nil {
		return
	}
	m.Reconnects.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) RecordCacheError(source model.Source) {
	if m == nil {
		return
	}
	m.CacheErrors.WithLabelValues(string(source)).Inc()
}

// SetConnected adjusts the connected session gauge by +1 or -1.
func (m *Metrics) SetConnected(source model.Source, connected bool) {
	if m == nil {
		return
	}
	g := m.FeedConnected.WithLabelValues(string(source))
	if connected {
		g.Inc()
	} else {
		g.Dec()
	}
}

func (m *Metrics) RecordLookup(result string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordLookupFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.LookupFetchS.Observe(d.Seconds())
}
