package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/pricefeed/internal/hub"
)

// maxInboundSize bounds client frames, which are read and discarded.
const maxInboundSize = 4096

// handlePush upgrades to a WebSocket and streams every published tick as a
// JSON text frame until either side goes away.
func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sub := s.deps.Hub.Subscribe()
	logger := s.logger.With("subscriber", sub.ID(), "remote_addr", r.RemoteAddr)
	logger.Info("push client connected")

	done := make(chan struct{})
	go s.readPump(conn, done)
	s.writePump(conn, sub, done, logger)

	sub.Close()
	conn.Close()
	logger.Info("push client disconnected")
}

// readPump discards inbound frames and extends the read deadline on every
// pong. It closes done when the peer is gone.
func (s *Server) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	pongWait := 2 * s.cfg.PingInterval
	conn.SetReadLimit(maxInboundSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, sub *hub.Subscription, done <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case tick, ok := <-sub.C():
			if !ok {
				// Hub closed at shutdown.
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(time.Second))
				return
			}
			if lag := sub.Lagged(); lag > 0 {
				logger.Warn("push client lagging", "dropped", lag)
			}
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteJSON(tick); err != nil {
				logger.Debug("push write failed", "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("push ping failed", "error", err)
				return
			}
		}
	}
}
