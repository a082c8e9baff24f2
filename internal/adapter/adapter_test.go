package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/ratelimit"
	"github.com/obelus-labs/veritas/internal/resilience"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPJSONSourceFetchAndNormalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"Alphabet Inc 10-K filing","snippet":"reported revenue of $96.5 billion","url":"https://example.com/1","id":"abc"}]}`))
	}))
	defer srv.Close()

	lex := lexicon.Default()
	src := NewHTTPJSONSource("sec_edgar", model.EvidenceFiling, queryBuilder(srv.URL), parseGeneric, lex, zerolog.Nop())

	out := src.Fetch(context.Background(), Request{ClaimText: "Alphabet reported revenue of $96.5 billion"})
	require.Len(t, out, 1)
	assert.Equal(t, "sec_edgar", out[0].SourceAPI)
	assert.Equal(t, model.EvidenceFiling, out[0].EvidenceType)
	assert.NotEmpty(t, out[0].Numbers)
}

func TestHTTPJSONSourceFailsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	lex := lexicon.Default()
	src := NewHTTPJSONSource("fred", model.EvidenceDataset, queryBuilder(srv.URL), parseGeneric, lex, zerolog.Nop())

	out := src.Fetch(context.Background(), Request{ClaimText: "GDP grew"})
	assert.Empty(t, out)
}

func TestRegistryFetchUnregisteredIsEmpty(t *testing.T) {
	reg := NewRegistry()
	out := reg.Fetch(context.Background(), "nonexistent", Request{})
	assert.Empty(t, out)
}

func TestResilientAbsorbsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	lex := lexicon.Default()
	src := NewHTTPJSONSource("bls", model.EvidenceDataset, queryBuilder(srv.URL), parseGeneric, lex, zerolog.Nop())
	limiter := ratelimit.NewRegistry(0, 0)
	breakers := resilience.NewCircuitBreakerRegistry(zerolog.Nop())

	resilient := NewResilient(src, "bls", limiter, breakers, zerolog.Nop())
	out := resilient.Fetch(context.Background(), Request{ClaimText: "unemployment rose"})
	assert.Empty(t, out)
}

func TestRegisterDefaultsPopulatesAllSources(t *testing.T) {
	reg := NewRegistry()
	RegisterDefaults(reg, lexicon.Default(), zerolog.Nop())
	for _, spec := range referenceSpecs {
		_, ok := reg.Get(spec.id)
		assert.True(t, ok, "expected %s registered", spec.id)
	}
}
