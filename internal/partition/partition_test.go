package partition

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func symbols(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("SYM%dUSDT", i)
	}
	return out
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		size      int
		wantSizes []int
	}{
		{name: "301 by 300", n: 301, size: 300, wantSizes: []int{300, 1}},
		{name: "exact multiple", n: 600, size: 300, wantSizes: []int{300, 300}},
		{name: "smaller than size", n: 5, size: 300, wantSizes: []int{5}},
		{name: "size one", n: 3, size: 1, wantSizes: []int{1, 1, 1}},
		{name: "empty", n: 0, size: 10, wantSizes: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := symbols(tt.n)
			chunks, err := Chunk(items, tt.size)
			if err != nil {
				t.Fatalf("Chunk failed: %v", err)
			}

			wantCount := (tt.n + tt.size - 1) / tt.size
			if len(chunks) != wantCount {
				t.Fatalf("len(chunks) = %d, want ceil(%d/%d) = %d", len(chunks), tt.n, tt.size, wantCount)
			}

			var joined []string
			for i, c := range chunks {
				if len(c) != tt.wantSizes[i] {
					t.Errorf("chunk %d size = %d, want %d", i, len(c), tt.wantSizes[i])
				}
				if len(c) > tt.size {
					t.Errorf("chunk %d exceeds max size: %d > %d", i, len(c), tt.size)
				}
				joined = append(joined, c...)
			}
			if tt.n > 0 && !reflect.DeepEqual(joined, items) {
				t.Error("concatenated chunks do not recover the input")
			}
		})
	}
}

func TestChunk_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Chunk([]string{"a"}, size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Chunk(size=%d) error = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestChunk_DoesNotAlias(t *testing.T) {
	items := []string{"a", "b", "c"}
	chunks, _ := Chunk(items, 2)

	chunks[0][0] = "z"
	if items[0] != "a" {
		t.Error("mutating a chunk changed the input slice")
	}
}

func TestBuild(t *testing.T) {
	groups, err := Build([]string{"BTCUSDT", "ETHUSDT", "BNBBTC"}, "@ticker", 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].ID != 1 || groups[1].ID != 2 {
		t.Errorf("group ids = %d,%d, want 1,2", groups[0].ID, groups[1].ID)
	}
	if got := groups[0].Path("/"); got != "btcusdt@ticker/ethusdt@ticker" {
		t.Errorf("Path = %q, want %q", got, "btcusdt@ticker/ethusdt@ticker")
	}
	if got := groups[1].Streams; !reflect.DeepEqual(got, []string{"bnbbtc@ticker"}) {
		t.Errorf("group 2 streams = %v", got)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	in := symbols(1000)

	a, err := Build(in, "@ticker", 300)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, _ := Build(in, "@ticker", 300)

	if !reflect.DeepEqual(a, b) {
		t.Error("Build is not deterministic for identical input")
	}
	if len(a) != 4 || a[3].Len() != 100 {
		t.Errorf("groups = %d, last = %d streams, want 4 and 100", len(a), a[3].Len())
	}
}

func TestFromStreams_KeepsCase(t *testing.T) {
	groups, err := FromStreams([]string{"BTC-USD", "ETH-USD", "SOL-USD"}, 2)
	if err != nil {
		t.Fatalf("FromStreams failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if !reflect.DeepEqual(groups[0].Streams, []string{"BTC-USD", "ETH-USD"}) {
		t.Errorf("group 1 = %v", groups[0].Streams)
	}
}
