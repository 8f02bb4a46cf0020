package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultCoinbaseURL is the Coinbase public REST API.
const DefaultCoinbaseURL = "https://api.coinbase.com"

const (
	defaultTimeout      = 10 * time.Second
	defaultRetries      = 2
	defaultRetryBackoff = 250 * time.Millisecond
	maxRetryWait        = 5 * time.Second
)

// CoinbaseClient reads public prices from the Coinbase REST API. Requests are
// unauthenticated GETs.
type CoinbaseClient struct {
	base       *url.URL
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	retry      retryPolicy
}

// retryPolicy controls how transient failures are retried. Waits start at
// backoff, double per retry and never exceed maxWait.
type retryPolicy struct {
	retries int
	backoff time.Duration
	maxWait time.Duration
}

// Option configures a CoinbaseClient.
type Option func(*CoinbaseClient)

// NewCoinbaseClient creates a client rooted at baseURL. An empty baseURL uses
// DefaultCoinbaseURL.
func NewCoinbaseClient(baseURL string, opts ...Option) (*CoinbaseClient, error) {
	if baseURL == "" {
		baseURL = DefaultCoinbaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse coinbase url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("coinbase url %q: need http(s)://host", baseURL)
	}

	c := &CoinbaseClient{
		base:    base,
		timeout: defaultTimeout,
		logger:  slog.Default(),
		retry: retryPolicy{
			retries: defaultRetries,
			backoff: defaultRetryBackoff,
			maxWait: maxRetryWait,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	c.logger = c.logger.With("component", "coinbase_rest")

	return c, nil
}

// WithTimeout bounds each request. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(c *CoinbaseClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many times a 5xx or 429 response is retried and the
// first backoff.
func WithRetries(retries int, backoff time.Duration) Option {
	return func(c *CoinbaseClient) {
		c.retry.retries = max(retries, 0)
		if backoff > 0 {
			c.retry.backoff = backoff
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CoinbaseClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *CoinbaseClient) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *CoinbaseClient) {
		c.userAgent = ua
	}
}
