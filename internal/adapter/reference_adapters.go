package adapter

import (
	"net/url"
	"time"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/ratelimit"
	"github.com/obelus-labs/veritas/internal/resilience"
	"github.com/obelus-labs/veritas/internal/router"
	"github.com/rs/zerolog"
)

// genericHit is the common JSON shape every reference adapter's API stub
// below is assumed to return: a flat array of title/snippet/url/id/time
// records. Real deployments swap ParseBody for each provider's actual
// response schema; this shape exists so the reference registry is wireable
// without per-provider response fixtures.
type genericHit struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	URL         string `json:"url"`
	ID          string `json:"id"`
	PublishedAt *int64 `json:"published_at"`
}

type genericResponse struct {
	Results []genericHit `json:"results"`
}

func parseGeneric(body []byte) ([]RawHit, error) {
	var resp genericResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, err
	}
	hits := make([]RawHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, RawHit{
			Title:       r.Title,
			Snippet:     r.Snippet,
			URL:         r.URL,
			Identifier:  r.ID,
			PublishedAt: r.PublishedAt,
		})
	}
	return hits, nil
}

func queryBuilder(baseURL string) URLBuilder {
	return func(req Request) string {
		v := url.Values{}
		v.Set("q", req.ClaimText)
		return baseURL + "?" + v.Encode()
	}
}

// referenceSpec describes one built-in adapter's fixed shape: its source
// id, API base URL, and evidence type (§4.F "Evidence type: each adapter
// has a fixed evidence_type tag").
type referenceSpec struct {
	id           router.SourceID
	sourceAPI    string
	baseURL      string
	evidenceType model.EvidenceType
}

var referenceSpecs = []referenceSpec{
	{router.SourceSECEdgar, "sec_edgar", "https://data.sec.gov/api/xbrl/search", model.EvidenceFiling},
	{router.SourceFRED, "fred", "https://api.stlouisfed.org/fred/series/observations", model.EvidenceDataset},
	{router.SourceYFinance, "yfinance", "https://query1.finance.yahoo.com/v8/finance/quote", model.EvidenceDataset},
	{router.SourceOpenFDA, "openfda", "https://api.fda.gov/drug/event.json", model.EvidenceGov},
	{router.SourcePubMed, "pubmed", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi", model.EvidencePaper},
	{router.SourceWorldBank, "worldbank", "https://api.worldbank.org/v2/country/all/indicator", model.EvidenceDataset},
	{router.SourcePatents, "patents", "https://developer.uspto.gov/ptab-api/proceedings", model.EvidenceGov},
	{router.SourceBLS, "bls", "https://api.bls.gov/publicAPI/v2/timeseries/data", model.EvidenceDataset},
	{router.SourceFactCheck, "factcheck", "https://toolbox.google.com/factcheck/api/v1/claimsearch", model.EvidenceFactcheck},
	{router.SourceWikipedia, "wikipedia", "https://en.wikipedia.org/w/api.php", model.EvidenceSecondary},
}

// RegisterDefaults builds and registers every reference adapter against
// the shared lexicon and logger, without resilience wrapping — callers
// that want rate limiting and circuit breaking should wrap each with
// NewResilient before registering (cmd/veritas's wiring does this).
func RegisterDefaults(reg *Registry, lex *lexicon.Lexicon, log zerolog.Logger) {
	for _, spec := range referenceSpecs {
		src := NewHTTPJSONSource(spec.sourceAPI, spec.evidenceType, queryBuilder(spec.baseURL), parseGeneric, lex, log)
		reg.Register(spec.id, src)
	}
}

// RegisterDefaultsResilient builds every reference adapter wrapped in
// NewResilient, sharing one rate-limit registry and one circuit-breaker
// registry across all of them — the wiring cmd/veritas uses in production.
func RegisterDefaultsResilient(reg *Registry, lex *lexicon.Lexicon, log zerolog.Logger, limiter *ratelimit.Registry, breakers *resilience.CircuitBreakerRegistry) {
	RegisterDefaultsResilientWithOverrides(reg, lex, log, limiter, breakers, nil)
}

// AdapterOverride customizes one reference adapter away from its built-in
// base URL, timeout and rate limit (SPEC_FULL.md §10 "Adapters: per-source
// base URL, API key env var name, timeout, rate-limit refill/burst").
type AdapterOverride struct {
	BaseURL        string
	APIKey         string
	TimeoutS       float64
	RateLimitRPS   float64
	RateLimitBurst int
}

// RegisterDefaultsResilientWithOverrides is RegisterDefaultsResilient with
// per-source overrides applied on top of each reference adapter's built-in
// defaults; overrides is keyed by the adapter's sourceAPI string ("sec_edgar",
// "fred", ...) and a nil map behaves exactly like RegisterDefaultsResilient.
func RegisterDefaultsResilientWithOverrides(reg *Registry, lex *lexicon.Lexicon, log zerolog.Logger, limiter *ratelimit.Registry, breakers *resilience.CircuitBreakerRegistry, overrides map[string]AdapterOverride) {
	for _, spec := range referenceSpecs {
		baseURL := spec.baseURL
		override, ok := overrides[spec.sourceAPI]
		if ok && override.BaseURL != "" {
			baseURL = override.BaseURL
		}

		src := NewHTTPJSONSource(spec.sourceAPI, spec.evidenceType, queryBuilder(baseURL), parseGeneric, lex, log)
		if ok {
			src.APIKey = override.APIKey
			if override.TimeoutS > 0 {
				timeout := time.Duration(override.TimeoutS * float64(time.Second))
				src.Timeout = timeout
				src.HTTPClient.Timeout = timeout
			}
			if override.RateLimitRPS > 0 || override.RateLimitBurst > 0 {
				limiter.SetLimit(spec.sourceAPI, override.RateLimitRPS, override.RateLimitBurst)
			}
		}

		reg.Register(spec.id, NewResilient(src, spec.sourceAPI, limiter, breakers, log))
	}
}
