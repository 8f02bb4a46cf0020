// Package feed runs the exchange connectors that turn upstream WebSocket
// frames into deduplicated, published ticks.
//
// One Connector owns one subscription group on one exchange. Its only control
// structure is a reconnect loop: dial, subscribe, read until the session
// fails, wait a fixed delay, repeat. Dial failures, read errors, decode errors
// and close frames all end the session the same way. Run returns only when
// the context is canceled or the connector cannot be configured at all.
//
// Exchange differences live behind Source: endpoint and subscribe message
// construction, frame decoding, and the mapping from native symbols to
// base/quote.
package feed
