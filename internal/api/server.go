// Package api serves the optional Component N surface (§ "API/alerts"):
// a thin HTTP server exposing a health check and a /ws/feed endpoint that
// streams newly-scored evidence and aggregator group updates through a
// single Hub.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Server is the Veritas alerts/feed HTTP server.
type Server struct {
	router    *http.ServeMux
	hub       *Hub
	logger    zerolog.Logger
	startTime time.Time
	version   string
}

// NewServer builds a Server and starts its hub's event loop.
func NewServer(logger zerolog.Logger) *Server {
	s := &Server{
		router:    http.NewServeMux(),
		hub:       NewHub(logger),
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
		version:   "1.0.0",
	}
	go s.hub.Run()
	s.setupRoutes()
	return s
}

// Hub returns the feed hub, for the orchestrator (or a caller wiring it in)
// to push BroadcastEvidence/BroadcastGroup events into.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Stop shuts down the hub, closing every connected client.
func (s *Server) Stop() {
	s.hub.Stop()
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /health/live", s.handleLiveness)
	s.router.HandleFunc("/ws/feed", func(w http.ResponseWriter, r *http.Request) {
		ServeFeed(s.hub, w, r)
	})
}

// ServeHTTP lets Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
