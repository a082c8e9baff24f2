package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/obs"
	"github.com/obelus-labs/veritas/internal/resilience"
)

// ---------------------------------------------------------------------------
// Tuning — deadlines come from resilience.DefaultTimeoutConfig().WS, shared
// with the rest of the process's timeout budget rather than hardcoded here.
// ---------------------------------------------------------------------------

var wsTimeouts = resilience.DefaultTimeoutConfig().WS

var (
	writeWait  = wsTimeouts.WriteDeadline
	pongWait   = wsTimeouts.PongWait
	pingPeriod = wsTimeouts.PingInterval
)

const (
	maxMessageSize = 4096

	defaultMaxClients = 100
	defaultMaxPerIP   = 5
	sendBufferSize    = 256
	staleTimeout      = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ---------------------------------------------------------------------------
// FeedEvent — the envelope broadcast to every client (§4.I orchestrator
// output: newly-scored evidence and aggregator group updates).
// ---------------------------------------------------------------------------

// FeedEventType names the two kinds of update the orchestrator publishes.
type FeedEventType string

const (
	EventEvidenceScored FeedEventType = "evidence_scored"
	EventGroupUpdated   FeedEventType = "group_updated"
)

// FeedEvent is the JSON message pushed to every matching WebSocket client.
type FeedEvent struct {
	Type     FeedEventType     `json:"type"`
	Evidence *model.ScoredEvidence `json:"evidence,omitempty"`
	Group    *model.ClaimGroup    `json:"group,omitempty"`
}

// Filter controls which events are forwarded to a client, parsed from the
// /ws/feed query string (§ "API/alerts") — one per-client filter, narrowed
// to the fields a claim/evidence feed actually has.
type Filter struct {
	Categories []model.Category
	MinScore   float64
}

// Matches reports whether ev passes f. A zero Filter matches everything.
func (f *Filter) Matches(ev FeedEvent) bool {
	if ev.Type == EventEvidenceScored && ev.Evidence != nil {
		if f.MinScore > 0 && ev.Evidence.Score < f.MinScore {
			return false
		}
	}
	if len(f.Categories) == 0 {
		return true
	}
	cat := eventCategory(ev)
	if cat == "" {
		return true
	}
	for _, c := range f.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

func eventCategory(ev FeedEvent) model.Category {
	if ev.Group != nil {
		return ev.Group.Category
	}
	return ""
}

func parseFilter(r *http.Request) *Filter {
	q := r.URL.Query()
	f := &Filter{}
	if cats := q.Get("categories"); cats != "" {
		for _, c := range strings.Split(cats, ",") {
			c = strings.TrimSpace(c)
			if c != "" {
				f.Categories = append(f.Categories, model.Category(c))
			}
		}
	}
	if raw := q.Get("min_score"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			f.MinScore = v
		}
	}
	return f
}

// ---------------------------------------------------------------------------
// Client — a single WebSocket connection: one read pump, one write pump,
// each running in its own goroutine over a buffered send channel.
// ---------------------------------------------------------------------------

type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	filter      *Filter
	id          string
	connectedAt time.Time
	remoteAddr  string
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug().Err(err).Str("client", c.id).Msg("websocket read error")
			}
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte("\n"))
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Hub — manages connected WebSocket clients plus programmatic (non-WS)
// subscribers in one type: a client registry with a fan-out broadcast
// loop, and a Subscribe/Unsubscribe channel API for in-process consumers.
// There is no separate publisher sitting between the orchestrator and the
// hub — the orchestrator calls Broadcast* directly after each claim's
// evidence is scored.
// ---------------------------------------------------------------------------

type Hub struct {
	clients map[*Client]bool

	broadcast  chan FeedEvent
	register   chan *Client
	unregister chan *Client

	maxClients int
	maxPerIP   int

	mu sync.RWMutex

	subscribers map[chan FeedEvent]struct{}
	subMu       sync.RWMutex

	logger zerolog.Logger
	stop   chan struct{}
}

// NewHub builds a Hub; call Run as a goroutine before serving /ws/feed.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		broadcast:   make(chan FeedEvent, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		maxClients:  defaultMaxClients,
		maxPerIP:    defaultMaxPerIP,
		subscribers: make(map[chan FeedEvent]struct{}),
		logger:      logger.With().Str("component", "feed-hub").Logger(),
		stop:        make(chan struct{}),
	}
}

func (h *Hub) SetMaxClients(max int) {
	if max > 0 {
		h.maxClients = max
	}
}

func (h *Hub) SetMaxPerIP(max int) {
	if max > 0 {
		h.maxPerIP = max
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Subscribe returns a channel receiving every broadcast event, for
// in-process consumers that don't go through a WebSocket (tests, a future
// CLI tail command). The caller must call Unsubscribe when done.
func (h *Hub) Subscribe() chan FeedEvent {
	ch := make(chan FeedEvent, 64)
	h.subMu.Lock()
	h.subscribers[ch] = struct{}{}
	h.subMu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan FeedEvent) {
	h.subMu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.subMu.Unlock()
}

func (h *Hub) notifySubscribers(ev FeedEvent) {
	h.subMu.RLock()
	defer h.subMu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Run is the hub's single event loop; start it as a goroutine.
func (h *Hub) Run() {
	staleTicker := time.NewTicker(staleTimeout)
	defer staleTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case ev := <-h.broadcast:
			h.notifySubscribers(ev)
			h.deliverToClients(ev)

		case <-staleTicker.C:
			h.cleanupStaleConnections()

		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				client.conn.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info().Msg("feed hub stopped")
			return
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	if len(h.clients) >= h.maxClients {
		h.mu.Unlock()
		h.logger.Warn().Str("client", client.id).Int("current", len(h.clients)).Msg("max clients reached, rejecting connection")
		_ = client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "max connections reached"))
		client.conn.Close()
		return
	}

	ipCount := 0
	for c := range h.clients {
		if c.remoteAddr == client.remoteAddr {
			ipCount++
		}
	}
	if ipCount >= h.maxPerIP {
		h.mu.Unlock()
		h.logger.Warn().Str("client", client.id).Str("ip", client.remoteAddr).Msg("per-IP limit reached, rejecting connection")
		_ = client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "per-IP limit reached"))
		client.conn.Close()
		return
	}

	h.clients[client] = true
	h.mu.Unlock()

	obs.Metrics().WSConnectionsTotal.Inc()
	obs.Metrics().WSConnectionsActive.Set(float64(h.ClientCount()))
	h.logger.Info().Str("client", client.id).Str("ip", client.remoteAddr).Msg("client connected")
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	obs.Metrics().WSDisconnectionsTotal.Inc()
	obs.Metrics().WSConnectionsActive.Set(float64(h.ClientCount()))
}

func (h *Hub) deliverToClients(ev FeedEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal feed event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.filter != nil && !client.filter.Matches(ev) {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.logger.Warn().Str("client", client.id).Msg("slow client dropped during broadcast")
		}
	}
}

func (h *Hub) cleanupStaleConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if time.Since(client.connectedAt) <= staleTimeout {
			continue
		}
		_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			delete(h.clients, client)
			close(client.send)
			client.conn.Close()
			obs.Metrics().WSDisconnectionsTotal.Inc()
			h.logger.Info().Str("client", client.id).Msg("stale connection cleaned up")
		}
	}
	obs.Metrics().WSConnectionsActive.Set(float64(len(h.clients)))
}

// Stop shuts the hub down, closing every connected client.
func (h *Hub) Stop() {
	close(h.stop)
}

// BroadcastEvidence publishes a freshly scored evidence candidate.
func (h *Hub) BroadcastEvidence(ev model.ScoredEvidence) {
	select {
	case h.broadcast <- FeedEvent{Type: EventEvidenceScored, Evidence: &ev}:
	default:
		h.logger.Warn().Msg("broadcast channel full, dropping evidence event")
	}
}

// BroadcastGroup publishes an aggregator claim-group update.
func (h *Hub) BroadcastGroup(g model.ClaimGroup) {
	select {
	case h.broadcast <- FeedEvent{Type: EventGroupUpdated, Group: &g}:
	default:
		h.logger.Warn().Msg("broadcast channel full, dropping group event")
	}
}

// ServeFeed upgrades the connection and registers a filtered client on hub.
func ServeFeed(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		filter:      parseFilter(r),
		id:          uuid.New().String(),
		connectedAt: time.Now(),
		remoteAddr:  extractIP(r),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
