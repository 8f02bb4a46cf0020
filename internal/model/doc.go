// Package model defines the exchange-agnostic tick shared by every stage of the pipeline.
//
// Conventions:
//   - Prices: decimal strings exactly as the exchange sent them, never floats
//   - Symbols: upper-case base and quote assets (e.g., BTC, USDT)
//   - Keys: "{source}-{base}-{quote}" (e.g., binance-BTC-USDT)
package model
