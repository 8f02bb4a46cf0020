package model

import (
	"fmt"
	"strings"
)

// Source identifies the exchange a tick came from.
type Source string

const (
	SourceBinance  Source = "binance"
	SourceCoinbase Source = "coinbase"
)

// Sources lists every supported exchange in a stable order.
var Sources = []Source{SourceBinance, SourceCoinbase}

// ParseSource converts a configuration name into a Source.
func ParseSource(name string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Sources {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", name)
}

func (s Source) String() string {
	return string(s)
}

// Tick is a single price observation for a trading pair from one source.
// Ticks are built once per inbound frame and never mutated afterwards.
type Tick struct {
	Source Source `json:"source"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
	Price  string `json:"price"`
}

// Key returns the dedup cache key for the tick.
func (t Tick) Key() string {
	return Key(t.Source, t.Base, t.Quote)
}

// Symbol returns the pair as BASE-QUOTE.
func (t Tick) Symbol() string {
	return t.Base + "-" + t.Quote
}

// Mapped reports whether the exchange symbol was decomposed into base and quote.
func (t Tick) Mapped() bool {
	return t.Base != "" && t.Quote != ""
}

func (t Tick) String() string {
	return fmt.Sprintf("(Ticker: %s - %s - %s)", t.Source, t.Symbol(), t.Price)
}

// Key builds the cache key for a source and pair.
func Key(source Source, base, quote string) string {
	return string(source) + "-" + base + "-" + quote
}
