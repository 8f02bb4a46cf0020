// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Feed connection state and reconnect counts
//   - Ticks received, published, suppressed by dedup, and unmapped
//   - Cache store errors
//   - Broadcast hub subscribers and dropped deliveries
//   - Price lookup outcomes and direct fetch latency
package metrics
