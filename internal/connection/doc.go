// Package connection provides the WebSocket client used for every upstream
// exchange feed and for the push-channel console client.
//
// Responsibilities:
//   - Dial with a handshake timeout and optional request headers
//   - Answer server pings and send keepalive pings
//   - Detect stale connections when no ping or pong arrives in time
//   - Deliver timestamped frames on a buffered channel, dropping when full
//   - Report the first read error (including close frames) on Errors()
//
// Reconnection is the caller's job; a Client is single-use.
package connection
