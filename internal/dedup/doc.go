// Package dedup decides whether a tick should be broadcast, using the shared
// cache store as a debounce window keyed by "{source}-{base}-{quote}".
//
// Modes:
//   - first_seen (default): SET NX GET. Only the first tick for a key inside
//     the TTL is published, whatever its price. A live entry is never
//     overwritten.
//   - on_change: publish when the key is absent or the stored price differs.
//     Identical prices inside the TTL are still suppressed. Opt-in, since it
//     rewrites live entries.
//
// Store errors skip the publish unless FailOpen is set.
package dedup
