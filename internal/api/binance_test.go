package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

const exchangeInfoBody = `{
  "timezone": "UTC",
  "serverTime": 1700000000000,
  "symbols": [
    {"symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT"},
    {"symbol": "ETHBTC", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "BTC"},
    {"symbol": "LUNAUSDT", "status": "BREAK", "baseAsset": "LUNA", "quoteAsset": "USDT"},
    {"symbol": "BNBEUR", "status": "TRADING", "baseAsset": "BNB", "quoteAsset": "EUR"}
  ]
}`

func TestBinanceUniverse_Symbols(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/exchangeInfo" {
			t.Errorf("path = %q, want /api/v3/exchangeInfo", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(exchangeInfoBody))
	}))
	defer server.Close()

	tests := []struct {
		name   string
		quotes []string
		want   []string
	}{
		{name: "all trading", quotes: nil, want: []string{"BTCUSDT", "ETHBTC", "BNBEUR"}},
		{name: "filtered by quote", quotes: []string{"usdt", "EUR"}, want: []string{"BTCUSDT", "BNBEUR"}},
	}

	u := NewBinanceUniverse(server.URL, 5*time.Second, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := u.Symbols(context.Background(), tt.quotes)
			if err != nil {
				t.Fatalf("Symbols failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Symbols = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBinanceUniverse_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":-1,"msg":"unavailable"}`))
	}))
	defer server.Close()

	u := NewBinanceUniverse(server.URL, 5*time.Second, nil)
	if _, err := u.Symbols(context.Background(), nil); err == nil {
		t.Fatal("expected error for 503 response")
	}
}
