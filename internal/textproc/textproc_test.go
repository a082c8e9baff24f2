package textproc

import (
	"testing"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	toks := Words("Alphabet reported revenue of $96.5 billion in Q4 2024.")
	assert.Contains(t, toks, "Alphabet")
	assert.Contains(t, toks, "96.5")
	assert.Contains(t, toks, "2024")
}

func TestDetectNumbers(t *testing.T) {
	cases := []struct {
		text string
		want float64
		unit string
	}{
		{"revenue of $96.5 billion", 96_500_000_000, "USD"},
		{"grew 2.8%", 2.8, "percent"},
		{"population of 1,234,567", 1_234_567, ""},
		{"a simple 42 here", 42, ""},
	}
	for _, c := range cases {
		nums := DetectNumbers(c.text)
		require.NotEmptyf(t, nums, "expected a number in %q", c.text)
		assert.InDelta(t, c.want, nums[0].Value, 0.001)
		assert.Equal(t, c.unit, nums[0].Unit)
	}
}

func TestDetectDates(t *testing.T) {
	dates := DetectDates("In Q4 2024, the company reported results; last year was softer.")
	var kinds []DateKind
	for _, d := range dates {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, DateQuarter)
	assert.Contains(t, kinds, DateRelative)
}

func TestDetectDatesISOAndYear(t *testing.T) {
	dates := DetectDates("Filed on 2024-01-05, covering fiscal 1998.")
	var kinds []DateKind
	for _, d := range dates {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, DateISO)
	assert.Contains(t, kinds, DateYear)
}

func TestDetectEntities(t *testing.T) {
	lex := lexicon.Default()
	ents := DetectEntities("Alphabet reported revenue growth alongside Microsoft Corp gains.", lex)
	var names []string
	var kinds = map[string]EntityKind{}
	for _, e := range ents {
		names = append(names, e.Text)
		kinds[e.Text] = e.Kind
	}
	assert.Contains(t, names, "Microsoft Corp")
	assert.Equal(t, EntityOrg, kinds["Microsoft Corp"])
}

func TestDetectEntitiesSentenceStartExcluded(t *testing.T) {
	lex := lexicon.Default()
	ents := DetectEntities("Growth remained strong across the board.", lex)
	for _, e := range ents {
		assert.NotEqual(t, "Growth", e.Text)
	}
}

func TestDetectAssertionVerbsAndHedges(t *testing.T) {
	lex := lexicon.Default()
	verbs := DetectAssertionVerbs("The company reported strong growth.", lex)
	assert.Contains(t, verbs, "reported")

	hedges := DetectHedges("Revenue could possibly reach new highs.", lex)
	assert.Contains(t, hedges, "could")
	assert.Contains(t, hedges, "possibly")
}

func TestNormalizeAndHashStability(t *testing.T) {
	lex := lexicon.Default()
	a := "The company grew revenue by 10%!"
	b := "company grew revenue by 10%"
	assert.Equal(t, ContentHash(a, lex), ContentHash(b, lex))

	c := "  THE Company   grew revenue by 10%.  "
	assert.Equal(t, ContentHash(a, lex), ContentHash(c, lex))
}

func TestTokenSimilarityThreshold(t *testing.T) {
	a := "Revenue grew twelve percent in the fourth quarter of this year"
	b := "Revenue grew twelve percent in the fourth quarter of the year"
	sim := TokenSimilarity(a, b)
	assert.Greater(t, sim, 0.85)

	c := "Completely unrelated statement about something else entirely"
	assert.Less(t, TokenSimilarity(a, c), 0.85)
}

func TestLongestCommonNgram(t *testing.T) {
	phrase, n := LongestCommonNgram(
		"the company reported record revenue growth this quarter",
		"analysts noted the company reported record revenue growth",
		3,
	)
	assert.Equal(t, 6, n)
	assert.Equal(t, "the company reported record revenue growth", phrase)
}
