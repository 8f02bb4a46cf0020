package feed

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rickgao/pricefeed/internal/model"
	"github.com/rickgao/pricefeed/internal/partition"
)

// DefaultBinanceWSURL is the raw stream base; group paths are appended to it.
const DefaultBinanceWSURL = "wss://stream.binance.com:9443/ws"

// BinanceSource streams 24hr ticker events from Binance.
type BinanceSource struct {
	wsURL string
}

// NewBinanceSource creates a source rooted at wsURL.
func NewBinanceSource(wsURL string) *BinanceSource {
	return &BinanceSource{wsURL: strings.TrimRight(wsURL, "/")}
}

type binanceSubscribe struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// binanceTicker holds the fields we read from a 24hrTicker event. E and C are
// declared so their numeric values are not matched case-insensitively onto e
// and c.
type binanceTicker struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	CloseTime int64  `json:"C"`
}

type binanceFrame struct {
	binanceTicker

	// Subscription responses
	ID     *int64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`

	// Combined stream wrapper
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

func (s *BinanceSource) Name() model.Source {
	return model.SourceBinance
}

// Endpoint appends the group's streams as a combined raw-stream path.
func (s *BinanceSource) Endpoint(group partition.Group) (string, error) {
	if group.Len() == 0 {
		return "", fmt.Errorf("%w: empty group", ErrInvalidEndpoint)
	}
	if _, err := validateWSURL(s.wsURL); err != nil {
		return "", err
	}
	return s.wsURL + "/" + group.Path("/"), nil
}

// SubscribeMessage returns a SUBSCRIBE request for the group's streams.
func (s *BinanceSource) SubscribeMessage(group partition.Group) ([]byte, error) {
	return json.Marshal(binanceSubscribe{
		Method: "SUBSCRIBE",
		Params: group.Streams,
		ID:     group.ID,
	})
}

func (s *BinanceSource) Decode(data []byte) (Message, bool, error) {
	var f binanceFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return Message{}, false, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if f.Stream != "" && len(f.Data) > 0 {
		return s.Decode(f.Data)
	}
	if f.Error != nil {
		return Message{}, false, fmt.Errorf("%w: binance %d: %s", ErrUpstream, f.Error.Code, f.Error.Msg)
	}
	if f.ID != nil {
		return Message{}, false, nil
	}

	if f.Symbol == "" {
		return Message{}, false, fmt.Errorf("%w: missing symbol", ErrDecode)
	}
	if err := validatePrice(f.Close); err != nil {
		return Message{}, false, err
	}

	return Message{Symbol: f.Symbol, Price: f.Close}, true, nil
}

func (s *BinanceSource) Normalize(msg Message) model.Tick {
	return model.NewBinanceTick(msg.Symbol, msg.Price)
}
