package connection

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw frame data with its receive timestamp.
type TimestampedMessage struct {
	Type       int       // websocket.TextMessage or websocket.BinaryMessage
	Data       []byte    // Raw frame payload
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// IsText reports whether the frame is a text frame.
func (m TimestampedMessage) IsText() bool {
	return m.Type == websocket.TextMessage
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., wss://stream.binance.com:9443/ws/btcusdt@ticker)
	Header           http.Header   // Extra handshake headers
	HandshakeTimeout time.Duration // Dial handshake timeout
	PingInterval     time.Duration // How often to send keepalive pings
	PingTimeout      time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      90 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}

// IsCloseFrame reports whether err came from a close frame sent by the peer.
func IsCloseFrame(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce)
}
