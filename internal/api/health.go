package api

import (
	"net/http"
	"time"
)

// HealthResponse is the /health payload. It has no per-component
// breakdown because the feed hub itself has no external dependency to
// probe — store/adapter health is reported by cmd/veritas's own startup
// checks instead.
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Version       string `json:"version"`
	ClientCount   int    `json:"client_count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Version:       s.version,
		ClientCount:   s.hub.ClientCount(),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
