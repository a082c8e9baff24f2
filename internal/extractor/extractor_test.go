package extractor

import (
	"testing"
	"time"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/veritaserr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeroLogger() zerolog.Logger {
	return zerolog.Nop()
}

func segs(texts ...string) []model.TimedSegment {
	out := make([]model.TimedSegment, len(texts))
	t := 0.0
	for i, txt := range texts {
		out[i] = model.TimedSegment{Text: txt, StartS: t, EndS: t + 5}
		t += 5
	}
	return out
}

func TestExtractBasicClaim(t *testing.T) {
	ex := New(lexicon.Default(), zeroLogger())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	claims, err := ex.Extract("src-1", segs(
		"Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024.",
	), now)

	require.NoError(t, err)
	require.Len(t, claims, 1)
	c := claims[0]
	assert.Equal(t, "src-1", c.SourceID)
	assert.Equal(t, model.CategoryFinance, c.Category)
	assert.Equal(t, model.ConfidenceDefinitive, c.ConfidenceLanguage)
	assert.NotEmpty(t, c.ContentHash)
	assert.NotEmpty(t, c.SignalLog)
	assert.Equal(t, now, c.CreatedAt)
	assert.NoError(t, c.Validate())
}

func TestExtractRejectsFragmentsAndShortSentences(t *testing.T) {
	ex := New(lexicon.Default(), zeroLogger())
	now := time.Now().UTC()

	claims, err := ex.Extract("src-1", segs(
		"And so it goes.",
		"Thanks for watching, like and subscribe for more videos like this one.",
		"Is this real.",
	), now)

	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestExtractLocalExactDedup(t *testing.T) {
	ex := New(lexicon.Default(), zeroLogger())
	now := time.Now().UTC()

	claims, err := ex.Extract("src-1", segs(
		"Alphabet reported revenue of $96.5 billion in the fourth quarter.",
		"ALPHABET reported revenue of $96.5 billion in the fourth quarter!",
	), now)

	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestExtractLocalFuzzyDedup(t *testing.T) {
	ex := New(lexicon.Default(), zeroLogger())
	now := time.Now().UTC()

	claims, err := ex.Extract("src-1", segs(
		"Revenue grew twelve percent in the fourth quarter of this year.",
		"Revenue grew twelve percent in the fourth quarter of the year.",
	), now)

	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestExtractRejectsMalformedSegments(t *testing.T) {
	ex := New(lexicon.Default(), zeroLogger())
	bad := []model.TimedSegment{
		{Text: "Alphabet reported revenue of $96.5 billion in Q4 2024.", StartS: 5, EndS: 1},
	}
	_, err := ex.Extract("src-1", bad, time.Now().UTC())
	require.Error(t, err)
	kind, ok := veritaserr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, veritaserr.KindInput, kind)
}

func TestExtractIsByteIdenticalAcrossRuns(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	input := segs(
		"Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024.",
		"The company also announced a new round of layoffs affecting five thousand workers.",
	)

	first, err := New(lexicon.Default(), zeroLogger()).Extract("src-1", input, now)
	require.NoError(t, err)

	second, err := New(lexicon.Default(), zeroLogger()).Extract("src-1", input, now)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestExtractHedgedConfidence(t *testing.T) {
	ex := New(lexicon.Default(), zeroLogger())
	now := time.Now().UTC()

	claims, err := ex.Extract("src-1", segs(
		"Analysts reportedly expect Alphabet revenue to grow roughly ten percent next year.",
	), now)

	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, model.ConfidenceHedged, claims[0].ConfidenceLanguage)
}
