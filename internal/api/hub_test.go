package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obelus-labs/veritas/internal/model"
)

func TestFilterMatchesEmptyFilter(t *testing.T) {
	f := &Filter{}
	ev := FeedEvent{Type: EventGroupUpdated, Group: &model.ClaimGroup{Category: model.CategoryFinance}}
	assert.True(t, f.Matches(ev))
}

func TestFilterCategories(t *testing.T) {
	f := &Filter{Categories: []model.Category{model.CategoryFinance}}

	financial := FeedEvent{Type: EventGroupUpdated, Group: &model.ClaimGroup{Category: model.CategoryFinance}}
	assert.True(t, f.Matches(financial))

	other := FeedEvent{Type: EventGroupUpdated, Group: &model.ClaimGroup{Category: model.CategoryScience}}
	assert.False(t, f.Matches(other))
}

func TestFilterMinScore(t *testing.T) {
	f := &Filter{MinScore: 50}

	low := FeedEvent{Type: EventEvidenceScored, Evidence: &model.ScoredEvidence{Score: 10}}
	assert.False(t, f.Matches(low))

	high := FeedEvent{Type: EventEvidenceScored, Evidence: &model.ScoredEvidence{Score: 90}}
	assert.True(t, f.Matches(high))
}

func TestHubClientCountAndLimits(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.SetMaxClients(10)
	hub.SetMaxPerIP(5)
	assert.Equal(t, 0, hub.ClientCount())
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	hub.SetMaxClients(10)
	hub.SetMaxPerIP(5)
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/feed", func(w http.ResponseWriter, r *http.Request) {
		ServeFeed(hub, w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestServeFeedConnectAndReceiveEvidence(t *testing.T) {
	hub, srv := newTestServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/feed"), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	hub.BroadcastEvidence(model.ScoredEvidence{
		ClaimID: "claim-1",
		Candidate: model.EvidenceCandidate{SourceAPI: "sec-edgar", Title: "10-K filing"},
		Score:   82,
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev FeedEvent
	require.NoError(t, json.Unmarshal(message, &ev))
	assert.Equal(t, EventEvidenceScored, ev.Type)
	require.NotNil(t, ev.Evidence)
	assert.Equal(t, "claim-1", ev.Evidence.ClaimID)
}

func TestServeFeedFilterByCategory(t *testing.T) {
	hub, srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/feed?categories=finance"), nil)
	require.NoError(t, err)
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	// A non-matching category update should never arrive.
	hub.BroadcastGroup(model.ClaimGroup{ID: "group-sci", Category: model.CategoryScience})

	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "filtered-out category should not be delivered")

	// A matching category update should arrive.
	hub.BroadcastGroup(model.ClaimGroup{ID: "group-fin", Category: model.CategoryFinance})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev FeedEvent
	require.NoError(t, json.Unmarshal(message, &ev))
	require.NotNil(t, ev.Group)
	assert.Equal(t, "group-fin", ev.Group.ID)
}

func TestServeFeedDisconnectCleansUp(t *testing.T) {
	hub, srv := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/feed"), nil)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	conn.Close()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubSubscribeProgrammatic(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Stop()

	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	hub.BroadcastGroup(model.ClaimGroup{ID: "group-1", Category: model.CategoryFinance})

	select {
	case ev := <-ch:
		assert.Equal(t, EventGroupUpdated, ev.Type)
		require.NotNil(t, ev.Group)
		assert.Equal(t, "group-1", ev.Group.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscribed event")
	}
}
