// Package api provides REST clients for the exchanges' synchronous endpoints.
//
// Endpoints:
//   - Coinbase spot price: GET https://api.coinbase.com/v2/prices/{BASE}-{QUOTE}/buy
//   - Binance symbol universe: GET https://api.binance.com/api/v3/exchangeInfo
//
// The Coinbase client retries 5xx and 429 responses with jittered exponential
// backoff, waiting at least as long as any Retry-After header asks. Prices are
// validated as decimals but returned as the exact strings the exchange sent.
package api
