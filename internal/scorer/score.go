package scorer

import (
	"math"
	"strings"
	"time"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/obs"
	"github.com/obelus-labs/veritas/internal/textproc"
)

// Scorer computes §4.G scores; it is stateless over a shared lexicon and
// weight table and safe for concurrent use.
type Scorer struct {
	Lexicon *lexicon.Lexicon
	Weights Weights
}

// New builds a Scorer with the given lexicon and weights.
func New(lex *lexicon.Lexicon, weights Weights) *Scorer {
	return &Scorer{Lexicon: lex, Weights: weights}
}

// Score computes a ScoredEvidence and its guardrail-derived status for one
// (claim, candidate) pair. now is the explicit temporal-alignment reference
// instant (§9 "now must be an explicit parameter of the scorer"); it is
// never read from the wall clock by this function.
func (s *Scorer) Score(claim model.Claim, candidate model.EvidenceCandidate, now time.Time) (model.ScoredEvidence, model.Status) {
	claimEntities := textproc.DetectEntities(claim.Text, s.Lexicon)
	claimNumbers := textproc.DetectNumbers(claim.Text)
	claimDates := textproc.DetectDates(claim.Text)

	candidateText := candidate.Title
	if candidate.Snippet != "" {
		candidateText += ". " + candidate.Snippet
	}

	breakdown := make(map[model.SignalName]float64, 6)

	breakdown[model.SignalTokenOverlap] = s.tokenOverlap(claim.Text, candidateText)

	entityMatch := s.entityMatch(claimEntities, candidateText)
	breakdown[model.SignalEntityMatch] = entityMatch

	numberScore, matchedNumber := s.numberMatch(claimNumbers, candidate.Numbers)
	breakdown[model.SignalNumberMatch] = numberScore

	keyphraseScore, matchedPhrase := s.keyphraseAlignment(claim.Text, candidateText)
	breakdown[model.SignalKeyphraseAlign] = keyphraseScore

	breakdown[model.SignalEvidenceType] = EvidenceWeightFor(s.Weights, claim.Category, candidate.EvidenceType)

	breakdown[model.SignalTemporalAlign] = s.temporalAlignment(claimDates, candidate.PublishedAt, claim.Category, now)

	rawTotal := 0.0
	for _, v := range breakdown {
		rawTotal += v
	}
	total := clamp(rawTotal, 0, 100)

	// Clamping only the total would break §8 invariant 10 (breakdown
	// values must sum to the score): rescale every signal by the same
	// factor so the clamped breakdown still sums to the clamped total.
	if total != rawTotal && rawTotal != 0 {
		scale := total / rawTotal
		for k := range breakdown {
			breakdown[k] *= scale
		}
	}

	evidence := model.ScoredEvidence{
		ClaimID:          claim.ID,
		Candidate:        candidate,
		Score:            total,
		Breakdown:        breakdown,
		MatchedKeyphrase: matchedPhrase,
		MatchedNumber:    matchedNumber,
	}

	status := s.guardrailStatus(total, candidate.EvidenceType, entityMatch, numberScore, keyphraseScore)
	obs.Metrics().ScorerVerdicts.WithLabelValues(string(status)).Inc()
	return evidence, status
}

// guardrailStatus implements the §4.G auto-status guardrails. CONTRADICTED
// is never returned here; it is never set by any automated code path.
func (s *Scorer) guardrailStatus(score float64, evidenceType model.EvidenceType, entityMatch, numberMatch, keyphraseAlign float64) model.Status {
	if score >= s.Weights.SupportedMinScore && evidenceType.IsPrimary() && (numberMatch > 0 || keyphraseAlign > 0) {
		return model.StatusSupported
	}
	if score >= s.Weights.PartialMinScore && score < s.Weights.PartialMaxScore && entityMatch > 0 {
		return model.StatusPartial
	}
	return model.StatusUnknown
}

// AggregateStatus picks the highest-ranked verdict across a claim's scored
// candidates (§4.G "the claim's auto-status is the highest-ranked verdict
// across its candidates").
func AggregateStatus(statuses []model.Status) model.Status {
	best := model.StatusUnknown
	for _, st := range statuses {
		if model.StatusRank(st) > model.StatusRank(best) {
			best = st
		}
	}
	return best
}

func (s *Scorer) tokenOverlap(claimText, candidateText string) float64 {
	a := tokenSet(claimText)
	b := tokenSet(candidateText)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	jaccard := float64(inter) / float64(union)
	return s.Weights.TokenOverlap * jaccard
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range textproc.Words(text) {
		lower := strings.ToLower(w)
		if stopwords[lower] {
			continue
		}
		set[lower] = true
	}
	return set
}

// stopwords is the small function-word list token overlap filters out
// before computing Jaccard similarity (§4.G "stop-word-filtered, stemmed
// token sets" — stemming is a no-op here; matching is case-insensitive
// exact-token, which the worked examples in §8 don't require beyond).
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "and": true, "or": true, "is": true,
	"are": true, "was": true, "were": true, "with": true, "by": true,
	"that": true, "this": true, "it": true, "as": true, "from": true,
}

func (s *Scorer) entityMatch(claimEntities []textproc.EntityMention, candidateText string) float64 {
	if len(claimEntities) == 0 {
		return 0
	}
	lower := strings.ToLower(candidateText)
	matched := 0
	for _, e := range claimEntities {
		if strings.Contains(lower, strings.ToLower(e.Text)) {
			matched++
		}
	}
	fraction := float64(matched) / float64(len(claimEntities))
	return s.Weights.EntityMatch * fraction
}

func (s *Scorer) numberMatch(claimNumbers, candidateNumbers []model.NumberMention) (float64, *model.NumberMention) {
	for _, cn := range claimNumbers {
		for _, dn := range candidateNumbers {
			if numbersEqual(cn.Value, dn.Value) {
				score := s.Weights.NumberMatch
				if unitsAgree(cn.Unit, dn.Unit) {
					score += s.Weights.NumberUnitBonus
				}
				match := dn
				return score, &match
			}
		}
	}
	return 0, nil
}

func numbersEqual(a, b float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	return math.Abs(a-b) <= math.Abs(a)*1e-6+1e-9
}

func unitsAgree(a, b string) bool {
	return a != "" && a == b
}

func (s *Scorer) keyphraseAlignment(claimText, candidateText string) (float64, string) {
	phrase, n := textproc.LongestCommonNgram(claimText, candidateText, 3)
	if n == 0 {
		return 0, ""
	}
	claimTokens := len(textproc.Words(claimText))
	if claimTokens == 0 {
		return 0, ""
	}
	fraction := float64(n) / float64(claimTokens)
	return clamp(s.Weights.KeyphraseAlignment*fraction, 0, s.Weights.KeyphraseAlignment), phrase
}

func (s *Scorer) temporalAlignment(claimDates []textproc.DateMention, publishedAt *int64, category model.Category, now time.Time) float64 {
	if publishedAt == nil {
		return 0
	}
	claimTime, ok := resolveClaimDate(claimDates, now)
	if !ok {
		return 0
	}
	published := time.Unix(*publishedAt, 0).UTC()
	deltaDays := math.Abs(claimTime.Sub(published).Hours() / 24)

	fullWindow := s.Weights.TemporalFullWindowDays
	decayDays := s.Weights.TemporalDecayYears * 365

	if deltaDays <= fullWindow {
		return s.Weights.TemporalAlignment
	}
	if deltaDays >= decayDays {
		if TimeSensitiveCategories[category] {
			return -s.Weights.TemporalStalePenalty
		}
		return 0
	}
	frac := 1 - (deltaDays-fullWindow)/(decayDays-fullWindow)
	return s.Weights.TemporalAlignment * frac
}

// resolveClaimDate picks the most specific resolvable date mention (ISO >
// quarter > year) and converts it to an absolute instant: an ISO date as
// written, a quarter as its first day, a bare year as July 1. Month-day
// mentions (with or without a year) and relative mentions are not
// resolved, and now is not consulted.
func resolveClaimDate(dates []textproc.DateMention, now time.Time) (time.Time, bool) {
	for _, d := range dates {
		switch d.Kind {
		case textproc.DateISO:
			if t, err := time.Parse("2006-01-02", d.Surface); err == nil {
				return t, true
			}
		}
	}
	for _, d := range dates {
		if d.Kind == textproc.DateQuarter && d.Year > 0 {
			month := quarterStartMonth(d.Surface)
			return time.Date(d.Year, month, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	for _, d := range dates {
		if d.Kind == textproc.DateYear && d.Year > 0 {
			return time.Date(d.Year, time.July, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	_ = now
	return time.Time{}, false
}

func quarterStartMonth(surface string) time.Month {
	switch {
	case strings.Contains(surface, "Q1"):
		return time.January
	case strings.Contains(surface, "Q2"):
		return time.April
	case strings.Contains(surface, "Q3"):
		return time.July
	default:
		return time.October
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
