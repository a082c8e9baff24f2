package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/obs"
	"github.com/obelus-labs/veritas/internal/textproc"
	"github.com/obelus-labs/veritas/internal/veritaserr"
	"github.com/rs/zerolog"
)

// Extractor runs the full §4.B/§4.C/§4.D pipeline: stitch segments into
// windows, split into sentences, filter fragments, detect candidates,
// classify, dedup, and emit an ordered Claim slice. An Extractor is
// stateless and safe for concurrent use across sources; per-source dedup
// state lives on the stack of a single Extract call.
type Extractor struct {
	Lexicon *lexicon.Lexicon
	log     zerolog.Logger
}

// New builds an Extractor over the given lexicon. The lexicon must already
// be compiled (lexicon.Load/Default do this). base is the root logger this
// component's child logger is derived from; the zero value logs nowhere.
func New(lex *lexicon.Lexicon, base zerolog.Logger) *Extractor {
	return &Extractor{Lexicon: lex, log: obs.Component(base, "extractor")}
}

// Extract runs the pipeline over one source's ordered segments, returning
// claims in window-then-sentence order. now is the explicit wall-clock
// value stamped onto every produced claim's CreatedAt; Extract never calls
// time.Now() itself so that identical (segments, lexicon, now) always
// produce byte-identical output.
func (e *Extractor) Extract(sourceID string, segments []model.TimedSegment, now time.Time) ([]model.Claim, error) {
	if err := model.ValidateSegments(segments); err != nil {
		return nil, veritaserr.NewInputError(err)
	}

	windows := Stitch(segments)
	dedup := newLocalDeduper()
	var claims []model.Claim

	for _, w := range windows {
		spans := SplitSentenceSpans(w.Text, e.Lexicon)
		for _, span := range spans {
			claim, reason, ok := e.processSentence(sourceID, span, w, now)
			if !ok {
				if reason != "" {
					e.log.Debug().Str("reason", string(reason)).Str("source_id", sourceID).Msg("sentence rejected")
					obs.Metrics().ClaimsRejected.WithLabelValues(string(reason)).Inc()
				}
				continue
			}
			if accepted, dupReason := dedup.accept(claim.ContentHash, textproc.Normalize(claim.Text, e.Lexicon)); !accepted {
				e.log.Debug().Str("reason", string(dupReason)).Str("source_id", sourceID).Msg("candidate deduplicated")
				obs.Metrics().ClaimsRejected.WithLabelValues(string(dupReason)).Inc()
				continue
			}
			obs.Metrics().ClaimsExtracted.Inc()
			claims = append(claims, claim)
		}
	}

	return claims, nil
}

// processSentence runs the length gate, fragment filter, candidate
// detection and classification stages for a single sentence span, producing
// a fully-populated (but not yet deduplicated) Claim.
func (e *Extractor) processSentence(sourceID string, span SentenceSpan, w Window, now time.Time) (model.Claim, RejectReason, bool) {
	text := span.Text

	if ok, reason := lengthGate(text); !ok {
		return model.Claim{}, reason, false
	}
	if frag, reason := isFragment(text, e.Lexicon); frag {
		return model.Claim{}, reason, false
	}

	isCandidate, tags := detectCandidate(text, e.Lexicon)
	if !isCandidate {
		return model.Claim{}, RejectNoSignal, false
	}

	entities := textproc.DetectEntities(text, e.Lexicon)
	numbers := textproc.DetectNumbers(text)

	confidence, confTags := classifyConfidence(text, e.Lexicon, entities, numbers)
	category, _ := classifyCategory(text, e.Lexicon)

	startS, endS := span.Timing(w)
	contentHash := textproc.ContentHash(text, e.Lexicon)

	claim := model.Claim{
		ID:                 claimID(sourceID, contentHash, startS, endS),
		SourceID:           sourceID,
		Text:               text,
		StartS:             startS,
		EndS:               endS,
		ContentHash:        contentHash,
		GlobalHash:         textproc.GlobalHash(text, e.Lexicon),
		ConfidenceLanguage: confidence,
		Category:           category,
		SignalLog:          append(append([]string{}, tags...), confTags...),
		Status:             model.StatusUnknown,
		CreatedAt:          now,
	}

	return claim, "", true
}

// claimID derives a stable identifier from the claim's source, normalized
// content hash, and span, so that extracting the same segments twice
// produces byte-identical Claim.ID values (§8 invariant 1) instead of a
// fresh random UUID per run.
func claimID(sourceID, contentHash string, startS, endS float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.3f|%.3f", sourceID, contentHash, startS, endS)))
	return hex.EncodeToString(sum[:16])
}
