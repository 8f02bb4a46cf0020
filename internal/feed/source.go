package feed

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/rickgao/pricefeed/internal/model"
	"github.com/rickgao/pricefeed/internal/partition"
)

var (
	// ErrDecode marks frames that cannot be read as the exchange's schema.
	ErrDecode = errors.New("decode frame")

	// ErrUpstream marks explicit error frames sent by the exchange.
	ErrUpstream = errors.New("upstream error")

	// ErrInvalidEndpoint marks a connector that cannot be configured.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

// Message is a decoded native ticker before normalization.
type Message struct {
	Symbol string // Exchange symbol (BTCUSDT, BTC-USD)
	Price  string // Last price as sent
}

// Source adapts one exchange's streaming protocol.
type Source interface {
	// Name identifies the exchange.
	Name() model.Source

	// Endpoint returns the WebSocket URL for a group.
	Endpoint(group partition.Group) (string, error)

	// SubscribeMessage returns the control frame sent right after connecting.
	SubscribeMessage(group partition.Group) ([]byte, error)

	// Decode parses a text frame. ok is false for control frames that carry
	// no ticker and should be skipped.
	Decode(data []byte) (msg Message, ok bool, err error)

	// Normalize maps a native message to a canonical tick.
	Normalize(msg Message) model.Tick
}

func validateWSURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: scheme must be ws or wss, got %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidEndpoint, raw)
	}
	return u, nil
}

func validatePrice(price string) error {
	if price == "" {
		return fmt.Errorf("%w: missing price", ErrDecode)
	}
	if _, err := decimal.NewFromString(price); err != nil {
		return fmt.Errorf("%w: price %q is not a decimal", ErrDecode, price)
	}
	return nil
}
