package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rickgao/pricefeed/internal/cache"
	"github.com/rickgao/pricefeed/internal/model"
)

// failingStore returns err from every operation.
type failingStore struct {
	cache.Store
	err error
}

func (s failingStore) SetIfAbsent(context.Context, string, string, time.Duration) (string, bool, error) {
	return "", false, s.err
}

func (s failingStore) SwapIfChanged(context.Context, string, string, time.Duration) (string, bool, error) {
	return "", false, s.err
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func btc(price string) model.Tick {
	return model.Tick{Source: model.SourceBinance, Base: "BTC", Quote: "USDT", Price: price}
}

type step struct {
	price   string
	advance time.Duration
	want    bool
}

func TestDeduper_Check(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		steps []step
	}{
		{
			name: "first_seen suppresses identical and changed prices inside ttl",
			mode: ModeFirstSeen,
			steps: []step{
				{"61234.50", 0, true},
				{"61234.50", 5 * time.Second, false},
				{"61300.00", time.Second, false},
				{"61300.00", 20 * time.Second, true},
			},
		},
		{
			name: "on_change publishes price changes",
			mode: ModeOnChange,
			steps: []step{
				{"61234.50", 0, true},
				{"61234.50", 5 * time.Second, false},
				{"61300.00", time.Second, true},
				{"61300.00", time.Second, false},
				{"61300.00", 20 * time.Second, true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &clock{now: time.Unix(1_700_000_000, 0)}
			store := cache.NewMemoryStore(cache.WithClock(c.Now))
			d := New(Config{TTL: 20 * time.Second, Mode: tt.mode}, store, nil, nil)

			for i, step := range tt.steps {
				c.now = c.now.Add(step.advance)
				got, err := d.Check(context.Background(), btc(step.price))
				if err != nil {
					t.Fatalf("step %d: Check failed: %v", i, err)
				}
				if got != step.want {
					t.Errorf("step %d (%s): publish = %v, want %v", i, step.price, got, step.want)
				}
			}
		})
	}
}

func TestDeduper_DuplicateScenario(t *testing.T) {
	store := cache.NewMemoryStore()
	d := New(DefaultConfig(), store, nil, nil)
	ctx := context.Background()

	published := 0
	for range 2 {
		ok, err := d.Check(ctx, model.NewBinanceTick("BTCUSDT", "61234.50"))
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if ok {
			published++
		}
	}

	if published != 1 {
		t.Errorf("published = %d, want 1", published)
	}

	val, found, _ := store.Get(ctx, "binance-BTC-USDT")
	if !found || val != "61234.50" {
		t.Errorf("cache entry = (%q, %v), want (61234.50, true)", val, found)
	}
	if ttl := store.TTL("binance-BTC-USDT"); ttl <= 19*time.Second || ttl > 20*time.Second {
		t.Errorf("ttl = %v, want ~20s", ttl)
	}
}

func TestDeduper_DefaultNeverOverwritesLiveEntry(t *testing.T) {
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	store := cache.NewMemoryStore(cache.WithClock(c.Now))
	d := New(DefaultConfig(), store, nil, nil)
	ctx := context.Background()

	published := 0
	for _, price := range []string{"100", "101", "100", "101"} {
		c.now = c.now.Add(time.Second)
		ok, err := d.Check(ctx, btc(price))
		if err != nil {
			t.Fatalf("Check(%s) failed: %v", price, err)
		}
		if ok {
			published++
		}
	}

	if published != 1 {
		t.Errorf("published = %d inside one window, want 1", published)
	}
	if val, _, _ := store.Get(ctx, "binance-BTC-USDT"); val != "100" {
		t.Errorf("cache entry = %q, want first price 100", val)
	}
	if ttl := store.TTL("binance-BTC-USDT"); ttl != 17*time.Second {
		t.Errorf("ttl = %v, want 17s left from the first write", ttl)
	}
}

func TestNew_EmptyModeIsFirstSeen(t *testing.T) {
	d := New(Config{TTL: time.Second}, cache.NewMemoryStore(), nil, nil)
	if d.cfg.Mode != ModeFirstSeen {
		t.Errorf("mode = %q, want %q", d.cfg.Mode, ModeFirstSeen)
	}
}

func TestDeduper_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")

	tests := []struct {
		name     string
		failOpen bool
		want     bool
	}{
		{name: "fail closed", failOpen: false, want: false},
		{name: "fail open", failOpen: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.FailOpen = tt.failOpen
			d := New(cfg, failingStore{err: storeErr}, nil, nil)

			got, err := d.Check(context.Background(), btc("1"))
			if !errors.Is(err, storeErr) {
				t.Errorf("error = %v, want wrapped %v", err, storeErr)
			}
			if got != tt.want {
				t.Errorf("publish = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeduper_KeysAreIndependent(t *testing.T) {
	d := New(DefaultConfig(), cache.NewMemoryStore(), nil, nil)
	ctx := context.Background()

	ticks := []model.Tick{
		btc("100"),
		{Source: model.SourceCoinbase, Base: "BTC", Quote: "USDT", Price: "100"},
		{Source: model.SourceBinance, Base: "ETH", Quote: "USDT", Price: "100"},
	}

	for _, tick := range ticks {
		ok, err := d.Check(ctx, tick)
		if err != nil {
			t.Fatalf("Check(%s) failed: %v", tick, err)
		}
		if !ok {
			t.Errorf("Check(%s) = false, want true for a new key", tick)
		}
	}
}
