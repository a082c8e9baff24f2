package ingest

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKafkaSegmentSourceConfig(t *testing.T) {
	cfg := DefaultKafkaSegmentSourceConfig([]string{"broker:9092"}, "veritas-ingest")
	assert.Equal(t, "veritas.transcript-segments", cfg.Topic)
	assert.Equal(t, "veritas-ingest", cfg.GroupID)
	assert.Equal(t, 1024, cfg.MinBytes)
	assert.Equal(t, 10*1024*1024, cfg.MaxBytes)
}

// sseServer streams a fixed sequence of plain-text events, then blocks
// until the request context is cancelled, mimicking a live feed that
// never closes on its own.
func sseServer(lines ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		wr := bufio.NewWriter(w)
		for _, line := range lines {
			fmt.Fprintf(wr, "event: message\ndata: %s\n\n", line)
			wr.Flush()
			if flusher != nil {
				flusher.Flush()
			}
		}
		<-r.Context().Done()
	}))
}

func TestSSETextSourceAssignsUniformTimestamps(t *testing.T) {
	srv := sseServer("first update", "second update", "third update")
	defer srv.Close()

	src := NewSSETextSource(SSETextSourceConfig{URL: srv.URL, MaxSegments: 3}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	segments, err := src.ListSegments(ctx, "live-feed")
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, "first update", segments[0].Text)
	assert.Equal(t, 0.0, segments[0].StartS)
	assert.Equal(t, DefaultSegmentDurationS, segments[0].EndS)
	assert.Equal(t, DefaultSegmentDurationS, segments[1].StartS)
	assert.Equal(t, 2*DefaultSegmentDurationS, segments[1].EndS)
	assert.Equal(t, 2*DefaultSegmentDurationS, segments[2].StartS)
}

func TestSSETextSourceStopsAtContextDeadlineWithPartialResult(t *testing.T) {
	srv := sseServer("only update")
	defer srv.Close()

	src := NewSSETextSource(SSETextSourceConfig{URL: srv.URL, MaxSegments: 10}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	segments, err := src.ListSegments(ctx, "live-feed")
	require.NoError(t, err)
	assert.Len(t, segments, 1)
	assert.Equal(t, "only update", segments[0].Text)
}
