package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rickgao/pricefeed/internal/cache"
	"github.com/rickgao/pricefeed/internal/metrics"
	"github.com/rickgao/pricefeed/internal/model"
)

type stubFetcher struct {
	price string
	err   error
	calls int
}

func (f *stubFetcher) FetchPrice(ctx context.Context, base, quote string) (string, error) {
	f.calls++
	return f.price, f.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection reset")
}

func TestTickerPrice_CacheHit(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	store.SetIfAbsent(ctx, "binance-BTC-USDT", "61234.50", 20*time.Second)

	fetcher := &stubFetcher{price: "1"}
	svc := New(DefaultConfig(), store, fetcher, nil, nil)

	got, err := svc.TickerPrice(ctx, "btc", "usdt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Quote{Base: "BTC", Quote: "USDT", Price: "61234.50", Source: model.SourceBinance, Cached: true}
	if got != want {
		t.Errorf("TickerPrice() = %+v, want %+v", got, want)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times on cache hit", fetcher.calls)
	}
}

func TestTickerPrice_SourceOrder(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	store.SetIfAbsent(ctx, "binance-BTC-USD", "61000.00", time.Minute)
	store.SetIfAbsent(ctx, "coinbase-BTC-USD", "61100.00", time.Minute)

	got, err := New(DefaultConfig(), store, &stubFetcher{}, nil, nil).TickerPrice(ctx, "BTC", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != model.SourceCoinbase || got.Price != "61100.00" {
		t.Errorf("TickerPrice() = %+v, want coinbase 61100.00", got)
	}
}

func TestTickerPrice_FetchOnMiss(t *testing.T) {
	store := cache.NewMemoryStore()
	fetcher := &stubFetcher{price: "61200.00"}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc := New(DefaultConfig(), store, fetcher, m, nil)
	got, err := svc.TickerPrice(context.Background(), "BTC", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != "61200.00" || got.Cached || got.Source != model.SourceCoinbase {
		t.Errorf("TickerPrice() = %+v", got)
	}

	if store.Len() != 0 {
		t.Errorf("lookup wrote %d keys to the cache", store.Len())
	}
	if v := testutil.ToFloat64(m.Lookups.WithLabelValues(metrics.LookupFetched)); v != 1 {
		t.Errorf("fetched lookups = %v, want 1", v)
	}
}

func TestTickerPrice_Errors(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		quote   string
		fetcher *stubFetcher
		wantErr error
	}{
		{name: "empty base", base: "", quote: "USD", fetcher: &stubFetcher{price: "1"}, wantErr: ErrInvalidPair},
		{name: "blank quote", base: "BTC", quote: "  ", fetcher: &stubFetcher{price: "1"}, wantErr: ErrInvalidPair},
		{name: "fetch fails", base: "BTC", quote: "USD", fetcher: &stubFetcher{err: errors.New("api error 503")}, wantErr: ErrPriceUnavailable},
		{name: "empty fetch", base: "BTC", quote: "USD", fetcher: &stubFetcher{}, wantErr: ErrPriceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(DefaultConfig(), cache.NewMemoryStore(), tt.fetcher, nil, nil)
			got, err := svc.TickerPrice(context.Background(), tt.base, tt.quote)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != (Quote{}) {
				t.Errorf("expected zero quote on error, got %+v", got)
			}
		})
	}
}

func TestTickerPrice_CacheErrorIsMiss(t *testing.T) {
	fetcher := &stubFetcher{price: "61200.00"}
	got, err := New(DefaultConfig(), brokenCache{}, fetcher, nil, nil).TickerPrice(context.Background(), "BTC", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Price != "61200.00" || fetcher.calls != 1 {
		t.Errorf("TickerPrice() = %+v after %d fetches", got, fetcher.calls)
	}
}
