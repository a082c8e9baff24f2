package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/obelus-labs/veritas/internal/adapter"
	"github.com/obelus-labs/veritas/internal/aggregator"
	"github.com/obelus-labs/veritas/internal/extractor"
	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/router"
	"github.com/obelus-labs/veritas/internal/scorer"
	"github.com/obelus-labs/veritas/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segs(texts ...string) []model.TimedSegment {
	out := make([]model.TimedSegment, len(texts))
	t := 0.0
	for i, txt := range texts {
		out[i] = model.TimedSegment{Text: txt, StartS: t, EndS: t + 5}
		t += 5
	}
	return out
}

func newTestOrchestrator(t *testing.T, filingServerURL string, cfg Config) (*Orchestrator, store.Store) {
	t.Helper()
	lex := lexicon.Default()
	reg := adapter.NewRegistry()

	build := func(req adapter.Request) string { return filingServerURL }
	parse := func(body []byte) ([]adapter.RawHit, error) {
		return []adapter.RawHit{{
			Title:   "Alphabet Inc 10-K filing",
			Snippet: "reported revenue of $96.5 billion in the fourth quarter",
			URL:     "https://example.com/filing/1",
		}}, nil
	}
	reg.Register(router.SourceSECEdgar, adapter.NewHTTPJSONSource("sec_edgar", model.EvidenceFiling, build, parse, lex, zerolog.Nop()))

	ex := extractor.New(lex, zerolog.Nop())
	sc := scorer.New(lex, scorer.DefaultWeights())
	st := store.NewMemoryStore()
	agg := aggregator.New(lex)

	o := New(ex, reg, sc, st, agg, lex, cfg, zerolog.Nop())
	return o, st
}

func TestRunSourceExtractsRoutesScoresAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	o, st := newTestOrchestrator(t, srv.URL, Config{})
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	src := model.Source{ID: "src-1", IngestedAt: now}
	segments := segs("Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024.")

	stats, err := o.RunSource(ctx, src, segments, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Extracted)
	assert.Equal(t, 1, stats.Evidenced)

	claims, err := st.ListClaimsBySource(ctx, "src-1")
	require.NoError(t, err)
	require.Len(t, claims, 1)

	evs, err := st.ListEvidence(ctx, claims[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, evs)
	assert.Equal(t, "sec_edgar", evs[0].Candidate.SourceAPI)
}

func TestRunSourceExpiredDeadlineLeavesLaterClaimsUnknown(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		<-block
	}))
	defer srv.Close()
	defer close(block)

	cfg := Config{PerSourceDeadline: 10 * time.Millisecond}
	o, st := newTestOrchestrator(t, srv.URL, cfg)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	src := model.Source{ID: "src-2", IngestedAt: now}
	segments := segs(
		"Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024.",
		"Microsoft reported revenue of $62 billion in the second quarter of 2024.",
	)

	stats, err := o.RunSource(ctx, src, segments, now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Extracted)
	assert.Equal(t, 2, stats.Unknown)

	claims, err := st.ListClaimsBySource(ctx, "src-2")
	require.NoError(t, err)
	for _, c := range claims {
		assert.Equal(t, model.StatusUnknown, c.Status)
	}
}

func TestRunSourceUnregisteredSourcesLeaveClaimUnknown(t *testing.T) {
	o, st := newTestOrchestrator(t, "http://example.invalid", Config{})
	o.Adapters = adapter.NewRegistry() // no sources registered at all

	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := model.Source{ID: "src-3", IngestedAt: now}
	segments := segs("The Senate passed the new tax bill today.")

	stats, err := o.RunSource(ctx, src, segments, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Extracted)
	assert.Equal(t, 1, stats.Evidenced)
	assert.Equal(t, 1, stats.Unknown)

	claims, err := st.ListClaimsBySource(ctx, "src-3")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	evs, err := st.ListEvidence(ctx, claims[0].ID)
	require.NoError(t, err)
	assert.Empty(t, evs)
}
