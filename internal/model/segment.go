// Package model defines the core data types shared across the Veritas
// pipeline: timed transcript segments, sources, claims, evidence, and
// cross-source claim groups.
package model

import "fmt"

// TimedSegment is a unit of input text with an approximate time span within
// its source. Segments must be non-overlapping and monotonically ordered by
// StartS; callers that cannot produce meaningful timings (plain text, PDF
// extraction) assign synthetic uniform timestamps instead.
type TimedSegment struct {
	Text   string  `json:"text"`
	StartS float64 `json:"start_s"`
	EndS   float64 `json:"end_s"`
}

// Validate checks the structural invariants a segment must hold on its own.
// Ordering/overlap across a whole slice is checked by ValidateSegments.
func (s TimedSegment) Validate() error {
	if s.Text == "" {
		return fmt.Errorf("segment text is empty")
	}
	if s.EndS < s.StartS {
		return fmt.Errorf("segment end_s %.3f before start_s %.3f", s.EndS, s.StartS)
	}
	return nil
}

// ValidateSegments checks that segments are individually valid, ordered by
// StartS, and non-overlapping. It is the extractor's InputError gate.
func ValidateSegments(segments []TimedSegment) error {
	if len(segments) == 0 {
		return fmt.Errorf("segment list is empty")
	}
	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if i > 0 {
			prev := segments[i-1]
			if seg.StartS < prev.StartS {
				return fmt.Errorf("segment %d out of order: start_s %.3f before segment %d start_s %.3f", i, seg.StartS, i-1, prev.StartS)
			}
			if seg.StartS < prev.EndS {
				return fmt.Errorf("segment %d overlaps segment %d: start_s %.3f < prev end_s %.3f", i, i-1, seg.StartS, prev.EndS)
			}
		}
	}
	return nil
}
