// Package extractor implements claim extraction (§4.B): segment stitching,
// sentence splitting, candidate detection, fragment filtering,
// classification, and deduplication, producing an ordered Claim slice from
// an ordered TimedSegment slice.
package extractor

import (
	"strings"

	"github.com/obelus-labs/veritas/internal/model"
)

// windowCapChars is the total character cap at which a stitched window is
// force-closed regardless of sentence termination (§4.B).
const windowCapChars = 600

// windowMinChars is the minimum accumulated length before a sentence
// terminator is allowed to close a window.
const windowMinChars = 80

// Window is a run of concatenated segments, spanning the StartS of its
// first segment to the EndS of its last.
type Window struct {
	Text   string
	StartS float64
	EndS   float64
}

// Stitch merges ordered segments into windows by concatenating until either
// a sentence-terminal punctuation mark has been seen with at least
// windowMinChars accumulated, or the windowCapChars cap is reached (§4.B).
func Stitch(segments []model.TimedSegment) []Window {
	var windows []Window
	var b strings.Builder
	var startS float64
	var endS float64
	open := false

	flush := func() {
		if b.Len() == 0 {
			return
		}
		windows = append(windows, Window{Text: b.String(), StartS: startS, EndS: endS})
		b.Reset()
		open = false
	}

	for _, seg := range segments {
		if !open {
			startS = seg.StartS
			open = true
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(seg.Text))
		endS = seg.EndS

		if b.Len() >= windowCapChars {
			flush()
			continue
		}
		if b.Len() >= windowMinChars && endsSentenceTerminal(b.String()) {
			flush()
		}
	}
	flush()
	return windows
}

// Timing interpolates a sentence span's StartS/EndS proportionally within
// its parent window's time span, by rune offset. This is the only timing
// signal available once segments have been stitched and re-split; spec.md
// §3 only requires ordering to be meaningful, not exact alignment.
func (s SentenceSpan) Timing(w Window) (startS, endS float64) {
	if s.WindowLen == 0 {
		return w.StartS, w.EndS
	}
	span := w.EndS - w.StartS
	startFrac := float64(s.StartRune) / float64(s.WindowLen)
	endFrac := float64(s.EndRune) / float64(s.WindowLen)
	return w.StartS + span*startFrac, w.StartS + span*endFrac
}

func endsSentenceTerminal(s string) bool {
	s = strings.TrimRight(s, " ")
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	return last == '.' || last == '!' || last == '?' || last == ';'
}
