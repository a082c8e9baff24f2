package router

import (
	"testing"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/textproc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteFinanceClaim(t *testing.T) {
	cfg := DefaultConfig()
	lex := lexicon.Default()
	text := "Alphabet Inc reported revenue of $96.5 billion in the fourth quarter of 2024."

	entities := textproc.DetectEntities(text, lex)
	numbers := textproc.DetectNumbers(text)
	dates := textproc.DetectDates(text)

	sources := Route(cfg, model.CategoryFinance, text, entities, numbers, dates)

	require.NotEmpty(t, sources)
	assert.LessOrEqual(t, len(sources), Cap)
	assert.Equal(t, SourceSECEdgar, sources[0])
	assert.Contains(t, sources, SourceSECEdgar)
}

func TestRouteIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	lex := lexicon.Default()
	text := "The Federal Reserve raised interest rates, affecting GDP growth this fiscal year."

	entities := textproc.DetectEntities(text, lex)
	numbers := textproc.DetectNumbers(text)
	dates := textproc.DetectDates(text)

	a := Route(cfg, model.CategoryFinance, text, entities, numbers, dates)
	b := Route(cfg, model.CategoryFinance, text, entities, numbers, dates)
	assert.Equal(t, a, b)
}

func TestRouteCapsAndKeepsFirstDefault(t *testing.T) {
	cfg := DefaultConfig()
	lex := lexicon.Default()
	text := "A company's revenue grew as workers and the population shifted amid an international patent dispute and budget cuts while a clinical trial and peer-reviewed study examined health outcomes."

	entities := textproc.DetectEntities(text, lex)
	numbers := textproc.DetectNumbers(text)
	dates := textproc.DetectDates(text)

	sources := Route(cfg, model.CategoryLabor, text, entities, numbers, dates)
	assert.LessOrEqual(t, len(sources), Cap)
	assert.Contains(t, sources, SourceBLS)
}
