package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr()+"/0", "", nil)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not-a-redis-url", "", nil)
	if err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, "redis://127.0.0.1:1/0", "", nil)
	if err == nil {
		t.Fatal("expected ping error for unreachable server")
	}
}

func TestNewRedisStore_PasswordOverride(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	if _, err := NewRedisStore(context.Background(), "redis://"+mr.Addr()+"/0", "", nil); err == nil {
		t.Fatal("expected auth error without password")
	}

	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr()+"/0", "s3cret", nil)
	if err != nil {
		t.Fatalf("NewRedisStore with password failed: %v", err)
	}
	store.Close()
}

func TestRedisStore_SetIfAbsent(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()
	const key = "binance-BTC-USDT"

	steps := []struct {
		name      string
		value     string
		advance   time.Duration
		wantPrev  string
		wantFound bool
		wantValue string
	}{
		{name: "absent key is written", value: "61234.50", wantFound: false, wantValue: "61234.50"},
		{name: "live key is kept", value: "61300.00", advance: 5 * time.Second, wantPrev: "61234.50", wantFound: true, wantValue: "61234.50"},
		{name: "expired key is written again", value: "61300.00", advance: 15 * time.Second, wantFound: false, wantValue: "61300.00"},
	}

	for _, st := range steps {
		t.Run(st.name, func(t *testing.T) {
			mr.FastForward(st.advance)

			prev, found, err := store.SetIfAbsent(ctx, key, st.value, 20*time.Second)
			if err != nil {
				t.Fatalf("SetIfAbsent failed: %v", err)
			}
			if found != st.wantFound || prev != st.wantPrev {
				t.Errorf("SetIfAbsent = (%q, %v), want (%q, %v)", prev, found, st.wantPrev, st.wantFound)
			}
			if got, _ := mr.Get(key); got != st.wantValue {
				t.Errorf("stored value = %q, want %q", got, st.wantValue)
			}
		})
	}
}

func TestRedisStore_SetIfAbsentTTL(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	if _, _, err := store.SetIfAbsent(ctx, "coinbase-ETH-USD", "3012.10", 20*time.Second); err != nil {
		t.Fatalf("SetIfAbsent failed: %v", err)
	}
	if ttl := mr.TTL("coinbase-ETH-USD"); ttl != 20*time.Second {
		t.Errorf("TTL = %v, want 20s", ttl)
	}

	// A suppressed write leaves the original expiry in place.
	mr.FastForward(5 * time.Second)
	if _, _, err := store.SetIfAbsent(ctx, "coinbase-ETH-USD", "3013.00", 20*time.Second); err != nil {
		t.Fatalf("SetIfAbsent failed: %v", err)
	}
	if ttl := mr.TTL("coinbase-ETH-USD"); ttl != 15*time.Second {
		t.Errorf("TTL after suppressed write = %v, want 15s", ttl)
	}
}

func TestRedisStore_SwapIfChanged(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()
	const key = "binance-ETH-BTC"

	steps := []struct {
		name      string
		value     string
		advance   time.Duration
		wantPrev  string
		wantFound bool
		wantTTL   time.Duration
	}{
		{name: "absent key is written", value: "0.0521", wantFound: false, wantTTL: 20 * time.Second},
		{name: "same value keeps ttl", value: "0.0521", advance: 5 * time.Second, wantPrev: "0.0521", wantFound: true, wantTTL: 15 * time.Second},
		{name: "different value resets ttl", value: "0.0522", advance: 5 * time.Second, wantPrev: "0.0521", wantFound: true, wantTTL: 20 * time.Second},
	}

	for _, st := range steps {
		t.Run(st.name, func(t *testing.T) {
			mr.FastForward(st.advance)

			prev, found, err := store.SwapIfChanged(ctx, key, st.value, 20*time.Second)
			if err != nil {
				t.Fatalf("SwapIfChanged failed: %v", err)
			}
			if found != st.wantFound || prev != st.wantPrev {
				t.Errorf("SwapIfChanged = (%q, %v), want (%q, %v)", prev, found, st.wantPrev, st.wantFound)
			}
			if got, _ := mr.Get(key); got != st.value {
				t.Errorf("stored value = %q, want %q", got, st.value)
			}
			if ttl := mr.TTL(key); ttl != st.wantTTL {
				t.Errorf("TTL = %v, want %v", ttl, st.wantTTL)
			}
		})
	}
}

func TestRedisStore_SetIfAbsentConcurrent(t *testing.T) {
	store, _ := newMiniredisStore(t)
	ctx := context.Background()

	var absent atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, found, err := store.SetIfAbsent(ctx, "binance-SOL-USDT", "142.17", 20*time.Second)
			if err != nil {
				t.Errorf("SetIfAbsent failed: %v", err)
				return
			}
			if !found {
				absent.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := absent.Load(); got != 1 {
		t.Errorf("callers that saw an absent key = %d, want 1", got)
	}
}

func TestRedisStore_Get(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "coinbase-BTC-USD"); err != nil || found {
		t.Errorf("Get on missing key = (found %v, err %v), want (false, nil)", found, err)
	}

	mr.Set("coinbase-BTC-USD", "61200.00")
	val, found, err := store.Get(ctx, "coinbase-BTC-USD")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || val != "61200.00" {
		t.Errorf("Get = (%q, %v), want (61200.00, true)", val, found)
	}
}

func TestRedisStore_ErrorsAfterServerGone(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()
	mr.Close()

	if _, _, err := store.SetIfAbsent(ctx, "binance-BTC-USDT", "1", 20*time.Second); err == nil {
		t.Error("SetIfAbsent: expected error after server shutdown")
	}
	if _, _, err := store.SwapIfChanged(ctx, "binance-BTC-USDT", "1", 20*time.Second); err == nil {
		t.Error("SwapIfChanged: expected error after server shutdown")
	}
	if err := store.Ping(ctx); err == nil {
		t.Error("Ping: expected error after server shutdown")
	}
}
