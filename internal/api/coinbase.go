package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when the price body has no usable amount.
var ErrInvalidAmount = errors.New("invalid amount")

// SpotPrice is the data object of a Coinbase price response.
type SpotPrice struct {
	Amount   string `json:"amount"`
	Base     string `json:"base"`
	Currency string `json:"currency"`
}

type spotPriceResponse struct {
	Data SpotPrice `json:"data"`
}

// GetBuyPrice fetches the current buy price for base/quote.
func (c *CoinbaseClient) GetBuyPrice(ctx context.Context, base, quote string) (*SpotPrice, error) {
	pair := strings.ToUpper(base) + "-" + strings.ToUpper(quote)

	var resp spotPriceResponse
	if err := c.getJSON(ctx, &resp, "v2", "prices", pair, "buy"); err != nil {
		return nil, fmt.Errorf("get buy price %s: %w", pair, err)
	}

	if resp.Data.Amount == "" {
		return nil, fmt.Errorf("get buy price %s: %w: missing amount", pair, ErrInvalidAmount)
	}
	if _, err := decimal.NewFromString(resp.Data.Amount); err != nil {
		return nil, fmt.Errorf("get buy price %s: %w: %q", pair, ErrInvalidAmount, resp.Data.Amount)
	}

	return &resp.Data, nil
}

// FetchPrice returns the buy price amount exactly as Coinbase formatted it.
func (c *CoinbaseClient) FetchPrice(ctx context.Context, base, quote string) (string, error) {
	p, err := c.GetBuyPrice(ctx, base, quote)
	if err != nil {
		return "", err
	}
	return p.Amount, nil
}
