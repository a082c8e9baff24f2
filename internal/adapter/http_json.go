package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/obs"
	"github.com/obelus-labs/veritas/internal/resilience"
	"github.com/obelus-labs/veritas/internal/textproc"
	"github.com/rs/zerolog"
)

// errStatus wraps a non-200 HTTP response as an error.
func errStatus(code int) error {
	return fmt.Errorf("unexpected status %d", code)
}

// DefaultMaxCandidates caps how many candidates a single adapter call
// returns (§4.F).
const DefaultMaxCandidates = 5

// RawHit is one hit as a concrete adapter's JSON parser extracts it, before
// HTTPJSONSource normalizes it into a model.EvidenceCandidate.
type RawHit struct {
	Title       string
	Snippet     string
	URL         string
	Identifier  string
	PublishedAt *int64 // unix seconds
}

// URLBuilder builds the request URL for one claim fetch.
type URLBuilder func(req Request) string

// ResultParser turns a successful HTTP response body into RawHits, in the
// adapter's native order; implementations should return at most
// DefaultMaxCandidates-ish results, though HTTPJSONSource also truncates.
type ResultParser func(body []byte) ([]RawHit, error)

// HTTPJSONSource is the generic HTTP+JSON fetch-and-normalize base every
// concrete reference adapter configures with a URL template and a JSON
// result parser: one shared *http.Client, a per-call timeout, and
// structured logging, the same provider-dispatch shape every reference
// adapter in internal/adapter/reference_adapters.go builds on.
type HTTPJSONSource struct {
	SourceAPI    string
	EvidenceType model.EvidenceType
	BuildURL     URLBuilder
	ParseBody    ResultParser
	MaxCandidates int
	Lexicon      *lexicon.Lexicon

	HTTPClient *http.Client
	Timeout    time.Duration
	Log        zerolog.Logger

	// APIKey, when non-empty, is sent as an "X-Api-Key" header on every
	// request — the provider credential an operator configures per
	// source via config.AdaptersConfig's api_key_env (SPEC_FULL.md §10).
	APIKey string
}

// NewHTTPJSONSource builds a source with the §4.F defaults filled in. The
// underlying transport's connect/TLS/idle timeouts come from
// resilience.DefaultTimeoutConfig().HTTP, shared with every other outbound
// client in the process.
func NewHTTPJSONSource(sourceAPI string, evidenceType model.EvidenceType, build URLBuilder, parse ResultParser, lex *lexicon.Lexicon, log zerolog.Logger) *HTTPJSONSource {
	httpCfg := resilience.DefaultTimeoutConfig().HTTP
	transport := &http.Transport{
		IdleConnTimeout:       httpCfg.IdleConnTimeout,
		TLSHandshakeTimeout:   httpCfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: httpCfg.ResponseHeaderTimeout,
		DialContext: (&net.Dialer{
			Timeout: httpCfg.ConnectTimeout,
		}).DialContext,
	}
	return &HTTPJSONSource{
		SourceAPI:     sourceAPI,
		EvidenceType:  evidenceType,
		BuildURL:      build,
		ParseBody:     parse,
		MaxCandidates: DefaultMaxCandidates,
		Lexicon:       lex,
		HTTPClient:    &http.Client{Timeout: httpCfg.RequestTimeout, Transport: transport},
		Timeout:       httpCfg.RequestTimeout,
		Log:           log.With().Str("component", "adapter").Str("source_api", sourceAPI).Logger(),
	}
}

// Fetch performs the HTTP round-trip and normalization, absorbing every
// failure into an empty result as the §4.F contract requires. Source
// wrappers that need the real error for a circuit breaker (Resilient) call
// fetchRaw directly instead.
func (h *HTTPJSONSource) Fetch(ctx context.Context, req Request) []model.EvidenceCandidate {
	out, err := h.fetchRaw(ctx, req)
	if err != nil {
		h.Log.Warn().Err(err).Msg("fetch failed")
		obs.Metrics().AdapterErrors.WithLabelValues(h.SourceAPI).Inc()
		return nil
	}
	obs.Metrics().EvidenceFetched.WithLabelValues(h.SourceAPI).Add(float64(len(out)))
	return out
}

// fetchRaw is the real HTTP round-trip, returning the transport/parse error
// instead of swallowing it — the signal Resilient's circuit breaker needs.
func (h *HTTPJSONSource) fetchRaw(ctx context.Context, req Request) ([]model.EvidenceCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	url := h.BuildURL(req)

	retryCfg := resilience.RetryConfig{
		MaxAttempts:   2,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      200 * time.Millisecond,
		OperationName: h.SourceAPI + " fetch",
	}

	var body []byte
	err := resilience.RetryWithBackoff(ctx, retryCfg, func(attemptCtx context.Context) error {
		httpReq, reqErr := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
		if reqErr != nil {
			return resilience.NewNonRetryableError(reqErr)
		}
		httpReq.Header.Set("Accept", "application/json")
		if h.APIKey != "" {
			httpReq.Header.Set("X-Api-Key", h.APIKey)
		}

		resp, doErr := h.HTTPClient.Do(httpReq)
		if doErr != nil {
			// Transport-level failures (connection refused, timeout) are
			// worth one retry; a cancelled parent context is not.
			if attemptCtx.Err() != nil {
				return resilience.NewNonRetryableError(doErr)
			}
			return resilience.NewRetryableError(doErr)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return resilience.NewRetryableError(errStatus(resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return resilience.NewNonRetryableError(errStatus(resp.StatusCode))
		}

		readBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return resilience.NewNonRetryableError(readErr)
		}
		body = readBody
		return nil
	})
	if err != nil {
		return nil, err
	}

	hits, err := h.ParseBody(body)
	if err != nil {
		return nil, err
	}

	if len(hits) > h.MaxCandidates {
		hits = hits[:h.MaxCandidates]
	}

	out := make([]model.EvidenceCandidate, 0, len(hits))
	for _, hit := range hits {
		out = append(out, h.normalize(hit))
	}
	return out, nil
}

// normalize populates entities/numbers/keyphrases from title+snippet using
// the same detectors the extractor uses (§4.F "Normalization").
func (h *HTTPJSONSource) normalize(hit RawHit) model.EvidenceCandidate {
	text := hit.Title
	if hit.Snippet != "" {
		text = text + ". " + hit.Snippet
	}

	ents := textproc.DetectEntities(text, h.Lexicon)
	entityNames := make([]string, 0, len(ents))
	for _, e := range ents {
		entityNames = append(entityNames, e.Text)
	}

	nums := textproc.DetectNumbers(text)

	words := textproc.Words(text)
	var keyphrases []string
	if len(words) >= 3 {
		keyphrases = append(keyphrases, words[0]+" "+words[1]+" "+words[2])
	}

	return model.EvidenceCandidate{
		SourceAPI:    h.SourceAPI,
		EvidenceType: h.EvidenceType,
		Title:        hit.Title,
		Snippet:      hit.Snippet,
		URL:          hit.URL,
		Identifier:   hit.Identifier,
		PublishedAt:  hit.PublishedAt,
		Entities:     entityNames,
		Numbers:      nums,
		Keyphrases:   keyphrases,
	}
}

// decodeJSON is a small helper concrete adapters' ResultParser funcs share.
func decodeJSON(body []byte, v interface{}) error {
	return json.Unmarshal(body, v)
}
