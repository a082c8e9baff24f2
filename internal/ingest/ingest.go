// Package ingest provides the default list_segments implementations (§6):
// external collaborators that turn an upstream transcript/text feed into
// ordered model.TimedSegment slices for the core pipeline. Neither
// implementation is part of the deterministic core; both sit behind the
// same SegmentSource contract so the orchestrator can be wired to either
// (or to a test fixture) without caring which.
package ingest

import (
	"context"

	"github.com/obelus-labs/veritas/internal/model"
)

// SegmentSource is the list_segments(source_id) contract from §6: produce
// an ordered slice of segments for one source. Implementations surface
// transport/parse errors to the caller rather than absorbing them, since an
// ingest failure must stop the source's run before the deterministic core
// ever sees the data (unlike an adapter.Source fetch, which is core-facing
// and must never error).
type SegmentSource interface {
	ListSegments(ctx context.Context, sourceID string) ([]model.TimedSegment, error)
}
