package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultServerPort         = 8080
	DefaultShutdownTimeout    = 10 * time.Second
	DefaultPushPingInterval   = 30 * time.Second
	DefaultPushWriteTimeout   = 10 * time.Second
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultCacheBackend       = BackendRedis
	DefaultRedisURL           = "redis://localhost:6379/0"
	DefaultDedupTTL           = 20 * time.Second
	DefaultDedupMode          = DedupModeFirstSeen
	DefaultReconnectDelay     = 5 * time.Second
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultFeedPingInterval   = 30 * time.Second
	DefaultFeedPingTimeout    = 90 * time.Second
	DefaultFeedBufferSize     = 1000
	DefaultBinanceWSURL       = "wss://stream.binance.com:9443/ws"
	DefaultBinanceRestURL     = "https://api.binance.com"
	DefaultStreamSuffix       = "@ticker"
	DefaultMaxStreamsPerConn  = 300
	DefaultCoinbaseWSURL      = "wss://ws-feed.exchange.coinbase.com"
	DefaultCoinbaseRestURL    = "https://api.coinbase.com"
	DefaultMaxProductsPerConn = 100
	DefaultHubBufferSize      = 100
	DefaultLookupTimeout      = 10 * time.Second
	DefaultLookupMaxRetries   = 2
	DefaultLookupBackoff      = 250 * time.Millisecond
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 5
	DefaultMinConns           = 1
)

// Accepted enum values.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"

	DedupModeFirstSeen = "first_seen"
	DedupModeOnChange  = "on_change"
)

// DefaultCoinbaseProducts is subscribed when no product list is configured.
var DefaultCoinbaseProducts = []string{"BTC-USD", "ETH-USD", "BTC-USDT", "ETH-USDT"}

// DefaultLookupSources is the cache lookup order.
var DefaultLookupSources = []string{"coinbase", "binance"}

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = DefaultPushPingInterval
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultPushWriteTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Cache defaults
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.Backend == BackendRedis && c.Redis.URL == "" {
		c.Redis.URL = DefaultRedisURL
	}
	if c.Dedup.TTL == 0 {
		c.Dedup.TTL = DefaultDedupTTL
	}
	if c.Dedup.Mode == "" {
		c.Dedup.Mode = DefaultDedupMode
	}

	// Feed defaults
	f := &c.Feeds
	if f.ReconnectDelay == 0 {
		f.ReconnectDelay = DefaultReconnectDelay
	}
	if f.HandshakeTimeout == 0 {
		f.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if f.PingInterval == 0 {
		f.PingInterval = DefaultFeedPingInterval
	}
	if f.PingTimeout == 0 {
		f.PingTimeout = DefaultFeedPingTimeout
	}
	if f.BufferSize == 0 {
		f.BufferSize = DefaultFeedBufferSize
	}
	if f.Binance.WSURL == "" {
		f.Binance.WSURL = DefaultBinanceWSURL
	}
	if f.Binance.RestURL == "" {
		f.Binance.RestURL = DefaultBinanceRestURL
	}
	if f.Binance.StreamSuffix == "" {
		f.Binance.StreamSuffix = DefaultStreamSuffix
	}
	if f.Binance.MaxStreamsPerConn == 0 {
		f.Binance.MaxStreamsPerConn = DefaultMaxStreamsPerConn
	}
	if f.Coinbase.WSURL == "" {
		f.Coinbase.WSURL = DefaultCoinbaseWSURL
	}
	if f.Coinbase.RestURL == "" {
		f.Coinbase.RestURL = DefaultCoinbaseRestURL
	}
	if len(f.Coinbase.Products) == 0 {
		f.Coinbase.Products = append([]string(nil), DefaultCoinbaseProducts...)
	}
	if f.Coinbase.MaxProductsPerConn == 0 {
		f.Coinbase.MaxProductsPerConn = DefaultMaxProductsPerConn
	}

	if c.Hub.BufferSize == 0 {
		c.Hub.BufferSize = DefaultHubBufferSize
	}

	// Lookup defaults
	if len(c.Lookup.Sources) == 0 {
		c.Lookup.Sources = append([]string(nil), DefaultLookupSources...)
	}
	if c.Lookup.Timeout == 0 {
		c.Lookup.Timeout = DefaultLookupTimeout
	}
	if c.Lookup.MaxRetries == 0 {
		c.Lookup.MaxRetries = DefaultLookupMaxRetries
	}
	if c.Lookup.RetryBackoff == 0 {
		c.Lookup.RetryBackoff = DefaultLookupBackoff
	}

	// Database defaults only matter when one is configured
	if c.Database.Configured() {
		applyDBDefaults(&c.Database)
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
