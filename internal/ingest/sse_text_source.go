package ingest

import (
	"context"
	"fmt"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/r3labs/sse/v2"
	"github.com/rs/zerolog"
)

// DefaultSegmentDurationS is the synthetic per-segment span assigned to
// each plain-text SSE message (§3: "for non-audio inputs, synthetic
// uniform timestamps are assigned; timings are not required to be
// meaningful beyond ordering").
const DefaultSegmentDurationS = 5.0

// SSETextSourceConfig configures one plain-text SSE stream subscription.
type SSETextSourceConfig struct {
	URL             string
	EventType       string
	SegmentDuration float64
	// MaxSegments bounds how many SSE messages one ListSegments call
	// collects before returning, so a live, unbounded stream can still
	// back a single finite list_segments() call.
	MaxSegments int
}

// SSETextSource turns a live, plain-text SSE stream into a bounded,
// ordered TimedSegment slice by assigning each received message the next
// synthetic uniform span, using sse.NewClient + SubscribeChanWithContext
// over an event channel to consume plain UTF-8 text messages.
type SSETextSource struct {
	client *sse.Client
	cfg    SSETextSourceConfig
	log    zerolog.Logger
}

// NewSSETextSource builds a client against cfg.URL; zero-value
// SegmentDuration/EventType/MaxSegments fall back to the §3 defaults.
func NewSSETextSource(cfg SSETextSourceConfig, log zerolog.Logger) *SSETextSource {
	if cfg.SegmentDuration <= 0 {
		cfg.SegmentDuration = DefaultSegmentDurationS
	}
	if cfg.EventType == "" {
		cfg.EventType = "message"
	}
	if cfg.MaxSegments <= 0 {
		cfg.MaxSegments = 200
	}
	client := sse.NewClient(cfg.URL)
	return &SSETextSource{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("component", "sse_text_source").Str("url", cfg.URL).Logger(),
	}
}

// ListSegments subscribes to the configured SSE stream and collects up to
// cfg.MaxSegments text events, or stops early if ctx is cancelled first.
// sourceID is accepted for interface symmetry with KafkaSegmentSource but
// is not otherwise consulted: one SSETextSource speaks for exactly one
// stream URL, already scoped to a single source at construction time.
func (s *SSETextSource) ListSegments(ctx context.Context, sourceID string) ([]model.TimedSegment, error) {
	events := make(chan *sse.Event)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- s.client.SubscribeChanWithContext(subCtx, s.cfg.EventType, events)
	}()

	segments := make([]model.TimedSegment, 0, s.cfg.MaxSegments)
	for len(segments) < s.cfg.MaxSegments {
		select {
		case <-ctx.Done():
			if len(segments) == 0 {
				return nil, fmt.Errorf("list segments for %s: %w", sourceID, ctx.Err())
			}
			return segments, nil
		case err := <-errc:
			if err != nil {
				return nil, fmt.Errorf("subscribe to %s: %w", s.cfg.URL, err)
			}
			return segments, nil
		case ev, ok := <-events:
			if !ok {
				return segments, nil
			}
			if len(ev.Data) == 0 {
				continue
			}
			start := float64(len(segments)) * s.cfg.SegmentDuration
			segments = append(segments, model.TimedSegment{
				Text:   string(ev.Data),
				StartS: start,
				EndS:   start + s.cfg.SegmentDuration,
			})
		}
	}
	return segments, nil
}
