package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	gbinance "github.com/adshao/go-binance/v2"
)

// BinanceUniverse lists the tradable Binance spot symbols.
type BinanceUniverse struct {
	client *gbinance.Client
	logger *slog.Logger
}

// NewBinanceUniverse creates a universe client. An empty baseURL keeps the
// library default.
func NewBinanceUniverse(baseURL string, timeout time.Duration, logger *slog.Logger) *BinanceUniverse {
	if logger == nil {
		logger = slog.Default()
	}

	client := gbinance.NewClient("", "")
	client.HTTPClient = &http.Client{Timeout: timeout}
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &BinanceUniverse{
		client: client,
		logger: logger.With("component", "binance_universe"),
	}
}

// Symbols returns every symbol with status TRADING, in exchange order. When
// quoteAssets is non-empty only symbols quoted in one of them are kept.
func (u *BinanceUniverse) Symbols(ctx context.Context, quoteAssets []string) ([]string, error) {
	info, err := u.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("get exchange info: %w", err)
	}

	wanted := make([]string, len(quoteAssets))
	for i, q := range quoteAssets {
		wanted[i] = strings.ToUpper(q)
	}

	symbols := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		if len(wanted) > 0 && !slices.Contains(wanted, s.QuoteAsset) {
			continue
		}
		symbols = append(symbols, s.Symbol)
	}

	u.logger.Info("loaded symbol universe",
		"total", len(info.Symbols),
		"trading", len(symbols),
	)

	return symbols, nil
}
