package scorer

import (
	"testing"
	"time"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSupportedScenario(t *testing.T) {
	s := New(lexicon.Default(), DefaultWeights())
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	claim := model.Claim{
		ID:       "c1",
		Text:     "Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024.",
		Category: model.CategoryFinance,
	}
	published := now.Add(-10 * 24 * time.Hour).Unix()
	candidate := model.EvidenceCandidate{
		SourceAPI:    "sec_edgar",
		EvidenceType: model.EvidenceFiling,
		Title:        "Alphabet 10-K",
		Snippet:      "Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024, driven by search and cloud growth.",
		URL:          "https://example.com/10k",
		Numbers:      []model.NumberMention{{Value: 96_500_000_000, Unit: "USD", Surface: "$96.5 billion"}},
		PublishedAt:  &published,
	}

	evidence, status := s.Score(claim, candidate, now)

	assert.GreaterOrEqual(t, evidence.Score, 85.0)
	assert.Equal(t, model.StatusSupported, status)
	require.NotNil(t, evidence.MatchedNumber)
	assert.NotEmpty(t, evidence.MatchedKeyphrase)
}

func TestScoreWikipediaSecondaryStaysUnknown(t *testing.T) {
	s := New(lexicon.Default(), DefaultWeights())
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	claim := model.Claim{
		ID:       "c2",
		Text:     "Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024.",
		Category: model.CategoryFinance,
	}
	candidate := model.EvidenceCandidate{
		SourceAPI:    "wikipedia",
		EvidenceType: model.EvidenceSecondary,
		Title:        "Alphabet Inc.",
		Snippet:      "Alphabet is a large technology conglomerate with substantial annual revenue growth.",
		URL:          "https://en.wikipedia.org/wiki/Alphabet_Inc.",
	}

	_, status := s.Score(claim, candidate, now)
	assert.Equal(t, model.StatusUnknown, status)
}

func TestScoreDegenerateEmptyCandidate(t *testing.T) {
	s := New(lexicon.Default(), DefaultWeights())
	now := time.Now().UTC()
	claim := model.Claim{ID: "c3", Text: "Something happened.", Category: model.CategoryGeneral}
	candidate := model.EvidenceCandidate{}

	evidence, status := s.Score(claim, candidate, now)
	assert.Equal(t, 0.0, evidence.Score)
	assert.Equal(t, model.StatusUnknown, status)
}

func TestAggregateStatusPicksHighestRank(t *testing.T) {
	got := AggregateStatus([]model.Status{model.StatusUnknown, model.StatusPartial, model.StatusUnknown})
	assert.Equal(t, model.StatusPartial, got)

	got = AggregateStatus(nil)
	assert.Equal(t, model.StatusUnknown, got)
}

func TestBreakdownSumsToScore(t *testing.T) {
	s := New(lexicon.Default(), DefaultWeights())
	now := time.Now().UTC()
	claim := model.Claim{ID: "c4", Text: "GDP grew 2.8% in 2024 according to government data.", Category: model.CategoryFinance}
	candidate := model.EvidenceCandidate{
		EvidenceType: model.EvidenceDataset,
		Title:        "GDP growth report",
		Snippet:      "GDP grew 2.8% in 2024 according to government data.",
		Numbers:      []model.NumberMention{{Value: 2.8, Unit: "percent", Surface: "2.8%"}},
	}

	evidence, _ := s.Score(claim, candidate, now)
	sum := 0.0
	for _, v := range evidence.Breakdown {
		sum += v
	}
	assert.InDelta(t, sum, evidence.Score, 1.0)
}

// TestBreakdownSumsToScoreWhenClamped exercises a candidate whose raw
// signal sum exceeds 100 (the number-match unit bonus alone can push a
// single candidate over the 100-point scale, per weights.go's own
// DefaultWeights comment), so Score's clamp actually engages and the
// breakdown must be rescaled along with it.
func TestBreakdownSumsToScoreWhenClamped(t *testing.T) {
	s := New(lexicon.Default(), DefaultWeights())
	now := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	claim := model.Claim{
		ID:       "c5",
		Text:     "Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024.",
		Category: model.CategoryFinance,
	}
	published := now.Add(-10 * 24 * time.Hour).Unix()
	candidate := model.EvidenceCandidate{
		SourceAPI:    "sec_edgar",
		EvidenceType: model.EvidenceFiling,
		Title:        "Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024",
		Snippet:      "Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024, driven by search and cloud growth.",
		URL:          "https://example.com/10k",
		Numbers:      []model.NumberMention{{Value: 96_500_000_000, Unit: "USD", Surface: "$96.5 billion"}},
		PublishedAt:  &published,
	}

	evidence, _ := s.Score(claim, candidate, now)

	require.InDelta(t, 100.0, evidence.Score, 1e-9, "this scenario must actually hit the clamp for the test to mean anything")

	sum := 0.0
	for _, v := range evidence.Breakdown {
		sum += v
	}
	assert.InDelta(t, sum, evidence.Score, 1.0)
}
