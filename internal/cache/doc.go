// Package cache provides the shared key-value store behind tick deduplication
// and price lookups.
//
// Two implementations satisfy Store:
//   - RedisStore: production store, one pooled client shared by all connectors
//   - MemoryStore: single-process store for local runs and tests
//
// Both guarantee that SetIfAbsent and SwapIfChanged are atomic per key, so
// concurrent connectors racing on the same key agree on a single winner.
package cache
