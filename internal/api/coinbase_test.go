package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetBuyPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/prices/BTC-USD/buy" {
			t.Errorf("path = %q, want /v2/prices/BTC-USD/buy", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"amount":"61200.00","base":"BTC","currency":"USD"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	price, err := c.GetBuyPrice(context.Background(), "btc", "usd")
	if err != nil {
		t.Fatalf("GetBuyPrice failed: %v", err)
	}

	if price.Amount != "61200.00" {
		t.Errorf("Amount = %q, want %q", price.Amount, "61200.00")
	}
	if price.Base != "BTC" || price.Currency != "USD" {
		t.Errorf("price = %+v", price)
	}
}

func TestFetchPrice_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantAPI   bool
		wantInval bool
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"errors":[]}`, wantAPI: true},
		{name: "unparseable body", status: http.StatusOK, body: `<html>`},
		{name: "missing amount", status: http.StatusOK, body: `{"data":{"base":"BTC"}}`, wantInval: true},
		{name: "non-decimal amount", status: http.StatusOK, body: `{"data":{"amount":"n/a"}}`, wantInval: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL, WithRetries(0, time.Millisecond))
			price, err := c.FetchPrice(context.Background(), "BTC", "USD")
			if err == nil {
				t.Fatalf("expected error, got price %q", price)
			}
			if price != "" {
				t.Errorf("price = %q, want empty on failure", price)
			}

			var apiErr *APIError
			if got := errors.As(err, &apiErr); got != tt.wantAPI {
				t.Errorf("errors.As(APIError) = %v, want %v (err: %v)", got, tt.wantAPI, err)
			}
			if got := errors.Is(err, ErrInvalidAmount); got != tt.wantInval {
				t.Errorf("errors.Is(ErrInvalidAmount) = %v, want %v (err: %v)", got, tt.wantInval, err)
			}
		})
	}
}
