package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rickgao/pricefeed/internal/lookup"
	"github.com/rickgao/pricefeed/internal/provider"
	"github.com/rickgao/pricefeed/internal/version"
)

const healthTimeout = 2 * time.Second

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status     string         `json:"status"`
	Version    string         `json:"version"`
	Components map[string]any `json:"components"`
}

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service": "pricefeed",
		"version": version.String(),
	})
}

// handleHealth reports 503 only when the cache is down; feeds and database
// problems degrade the status without failing the probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	health := healthResponse{
		Status:     "healthy",
		Version:    version.Version,
		Components: make(map[string]any),
	}

	if err := s.deps.Cache.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Components["cache"] = componentStatus{Status: "disconnected", Error: err.Error()}
	} else {
		health.Components["cache"] = componentStatus{Status: "connected"}
	}

	if s.deps.Feeds != nil {
		stats := s.deps.Feeds.Stats()
		health.Components["feeds"] = map[string]int{
			"connected": stats.Connected,
			"total":     stats.Total,
		}
		if stats.Connected < stats.Total && health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	if s.deps.Hub != nil {
		health.Components["hub"] = s.deps.Hub.Stats()
	}

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(ctx); err != nil {
			health.Components["database"] = componentStatus{Status: "disconnected", Error: err.Error()}
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
		} else {
			health.Components["database"] = componentStatus{Status: "connected"}
		}
	}

	code := http.StatusOK
	if health.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, health)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	quote := r.URL.Query().Get("quote")
	if base == "" || quote == "" {
		s.writeError(w, http.StatusBadRequest, "base and quote query parameters are required")
		return
	}

	q, err := s.deps.Lookup.TickerPrice(r.Context(), base, quote)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, q)
	case errors.Is(err, lookup.ErrInvalidPair):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lookup.ErrPriceUnavailable):
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("price lookup failed", "base", base, "quote", quote, "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if s.deps.Providers == nil || !s.deps.Providers.Available() {
		s.writeError(w, http.StatusServiceUnavailable, provider.ErrNoDatabase.Error())
		return
	}

	providers, err := s.deps.Providers.List(r.Context())
	if err != nil {
		if errors.Is(err, provider.ErrNoDatabase) {
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.logger.Error("list providers failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list providers")
		return
	}
	s.writeJSON(w, http.StatusOK, providers)
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feeds == nil {
		s.writeError(w, http.StatusServiceUnavailable, "feeds not running")
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Feeds.Stats())
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("encode response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, errorResponse{Error: msg})
}
