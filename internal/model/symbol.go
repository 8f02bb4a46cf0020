package model

import "strings"

// quoteAssets is matched in order, so USDT wins over USD for BTCUSDT.
var quoteAssets = []string{
	"USDT", "BTC", "ETH", "BNB", "DAI", "USD", "EUR", "USDC", "TRY", "BRL", "ZAR",
	"ARS", "RON", "XRP", "UAH", "BIDR", "NGN", "PLN", "RUB", "DOGE", "IDRT",
}

// QuoteAssets returns a copy of the quote assets recognised by SplitBinanceSymbol.
func QuoteAssets() []string {
	out := make([]string, len(quoteAssets))
	copy(out, quoteAssets)
	return out
}

// SplitBinanceSymbol splits a concatenated exchange symbol such as BTCUSDT into
// base and quote. It returns empty strings when no known quote asset leaves a
// non-empty base.
func SplitBinanceSymbol(symbol string) (base, quote string) {
	symbol = strings.ToUpper(symbol)
	for _, q := range quoteAssets {
		if b, ok := strings.CutSuffix(symbol, q); ok && b != "" {
			return b, q
		}
	}
	return "", ""
}

// SplitProductID splits a dash-separated product id such as BTC-USD.
func SplitProductID(productID string) (base, quote string) {
	b, q, ok := strings.Cut(strings.ToUpper(productID), "-")
	if !ok || b == "" || q == "" {
		return "", ""
	}
	return b, q
}

// NewBinanceTick builds a tick from a Binance symbol and price.
func NewBinanceTick(symbol, price string) Tick {
	base, quote := SplitBinanceSymbol(symbol)
	return Tick{Source: SourceBinance, Base: base, Quote: quote, Price: price}
}

// NewCoinbaseTick builds a tick from a Coinbase product id and price.
func NewCoinbaseTick(productID, price string) Tick {
	base, quote := SplitProductID(productID)
	return Tick{Source: SourceCoinbase, Base: base, Quote: quote, Price: price}
}
