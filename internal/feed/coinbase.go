package feed

import (
	"encoding/json"
	"fmt"

	"github.com/rickgao/pricefeed/internal/model"
	"github.com/rickgao/pricefeed/internal/partition"
)

// DefaultCoinbaseWSURL is the Coinbase Exchange market data feed.
const DefaultCoinbaseWSURL = "wss://ws-feed.exchange.coinbase.com"

// CoinbaseSource streams ticker messages from the Coinbase Exchange feed.
type CoinbaseSource struct {
	wsURL string
}

// NewCoinbaseSource creates a source connecting to wsURL.
func NewCoinbaseSource(wsURL string) *CoinbaseSource {
	return &CoinbaseSource{wsURL: wsURL}
}

type coinbaseChannel struct {
	Name       string   `json:"name"`
	ProductIDs []string `json:"product_ids"`
}

type coinbaseSubscribe struct {
	Type     string            `json:"type"`
	Channels []coinbaseChannel `json:"channels"`
}

type coinbaseFrame struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Message   string `json:"message"`
	Reason    string `json:"reason"`
}

func (s *CoinbaseSource) Name() model.Source {
	return model.SourceCoinbase
}

// Endpoint returns the feed URL; products are chosen by the subscribe message.
func (s *CoinbaseSource) Endpoint(group partition.Group) (string, error) {
	if group.Len() == 0 {
		return "", fmt.Errorf("%w: empty group", ErrInvalidEndpoint)
	}
	if _, err := validateWSURL(s.wsURL); err != nil {
		return "", err
	}
	return s.wsURL, nil
}

// SubscribeMessage subscribes the group's products to the ticker channel.
func (s *CoinbaseSource) SubscribeMessage(group partition.Group) ([]byte, error) {
	return json.Marshal(coinbaseSubscribe{
		Type: "subscribe",
		Channels: []coinbaseChannel{
			{Name: "ticker", ProductIDs: group.Streams},
		},
	})
}

func (s *CoinbaseSource) Decode(data []byte) (Message, bool, error) {
	var f coinbaseFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return Message{}, false, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch f.Type {
	case "ticker":
	case "error":
		return Message{}, false, fmt.Errorf("%w: coinbase: %s %s", ErrUpstream, f.Message, f.Reason)
	case "":
		return Message{}, false, fmt.Errorf("%w: missing type", ErrDecode)
	default:
		// subscriptions, heartbeat, status
		return Message{}, false, nil
	}

	if f.ProductID == "" {
		return Message{}, false, fmt.Errorf("%w: missing product_id", ErrDecode)
	}
	if err := validatePrice(f.Price); err != nil {
		return Message{}, false, err
	}

	return Message{Symbol: f.ProductID, Price: f.Price}, true, nil
}

func (s *CoinbaseSource) Normalize(msg Message) model.Tick {
	return model.NewCoinbaseTick(msg.Symbol, msg.Price)
}
