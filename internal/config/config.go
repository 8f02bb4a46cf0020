package config

import "time"

// Config is the root configuration for a pricefeed instance.
type Config struct {
	Server   ServerConfig `yaml:"server"`
	Log      LogConfig    `yaml:"log"`
	Cache    CacheConfig  `yaml:"cache"`
	Redis    RedisConfig  `yaml:"redis"`
	Dedup    DedupConfig  `yaml:"dedup"`
	Feeds    FeedsConfig  `yaml:"feeds"`
	Hub      HubConfig    `yaml:"hub"`
	Lookup   LookupConfig `yaml:"lookup"`
	Database DBConfig     `yaml:"database"`
}

// ServerConfig holds the HTTP front door settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PingInterval    time.Duration `yaml:"ping_interval"` // push channel keepalive
	WriteTimeout    time.Duration `yaml:"write_timeout"` // push channel frame deadline
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"` // text or json
}

// CacheConfig selects the dedup store.
type CacheConfig struct {
	Backend string `yaml:"backend" env:"CACHE_BACKEND"` // redis or memory
}

// RedisConfig holds the shared Redis connection.
type RedisConfig struct {
	URL      string `yaml:"url" env:"REDIS_URL"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

// DedupConfig controls duplicate suppression.
type DedupConfig struct {
	TTL      time.Duration `yaml:"ttl" env:"DEDUP_TTL"`
	Mode     string        `yaml:"mode" env:"DEDUP_MODE"`
	FailOpen bool          `yaml:"fail_open" env:"DEDUP_FAIL_OPEN"`
}

// FeedsConfig holds the upstream connector settings.
type FeedsConfig struct {
	ReconnectDelay   time.Duration `yaml:"reconnect_delay"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PingInterval     time.Duration `yaml:"ping_interval"`
	PingTimeout      time.Duration `yaml:"ping_timeout"`
	BufferSize       int           `yaml:"buffer_size"`

	Binance  BinanceConfig  `yaml:"binance"`
	Coinbase CoinbaseConfig `yaml:"coinbase"`
}

// BinanceConfig configures the Binance ticker feed.
type BinanceConfig struct {
	Disabled bool   `yaml:"disabled"`
	WSURL    string `yaml:"ws_url" env:"BINANCE_WS_URL"`
	RestURL  string `yaml:"rest_url" env:"BINANCE_REST_URL"`

	// Symbols skips the exchangeInfo fetch when set.
	Symbols []string `yaml:"symbols"`

	// QuoteAssets filters the fetched universe. Empty keeps every pair.
	QuoteAssets []string `yaml:"quote_assets"`

	StreamSuffix      string `yaml:"stream_suffix"`
	MaxStreamsPerConn int    `yaml:"max_streams_per_conn"`
}

// CoinbaseConfig configures the Coinbase ticker feed and REST fallback.
type CoinbaseConfig struct {
	Disabled           bool     `yaml:"disabled"`
	WSURL              string   `yaml:"ws_url" env:"COINBASE_WS_URL"`
	RestURL            string   `yaml:"rest_url" env:"COINBASE_REST_URL"`
	Products           []string `yaml:"products"`
	MaxProductsPerConn int      `yaml:"max_products_per_conn"`
}

// HubConfig sizes subscriber queues.
type HubConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// LookupConfig controls the pull-style price query.
type LookupConfig struct {
	Sources      []string      `yaml:"sources"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// DBConfig holds the optional PostgreSQL connection. Either URL or the host
// fields may be set; neither means no database.
type DBConfig struct {
	URL      string `yaml:"url" env:"DATABASE_URL"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Configured reports whether a database was requested.
func (db DBConfig) Configured() bool {
	return db.URL != "" || db.Host != ""
}
