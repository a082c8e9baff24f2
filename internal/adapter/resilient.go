package adapter

import (
	"context"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/ratelimit"
	"github.com/obelus-labs/veritas/internal/resilience"
	"github.com/rs/zerolog"
)

// rawFetcher is satisfied by sources (HTTPJSONSource) that can report a
// real transport/parse error instead of swallowing it, so the circuit
// breaker has a genuine failure signal to count.
type rawFetcher interface {
	fetchRaw(ctx context.Context, req Request) ([]model.EvidenceCandidate, error)
}

// Resilient wraps a Source with a per-adapter rate limiter and
// internal/resilience's circuit-breaker pattern for transient transport
// errors — a breaker trip or exhausted bucket still resolves to an empty
// candidate list, never an error, preserving §7's "never surfaces" rule
// (§4.F [EXPANSION]).
type Resilient struct {
	inner    Source
	raw      rawFetcher // non-nil when inner also exposes fetchRaw
	sourceID string
	limiter  *ratelimit.Registry
	breaker  *resilience.CircuitBreaker
	log      zerolog.Logger
}

// NewResilient wraps inner with rate limiting and a circuit breaker scoped
// to sourceID. If inner also implements the unexported fetchRaw contract
// (every HTTPJSONSource-based adapter does), breaker trips are driven by
// real transport failures; otherwise the breaker only ever sees successes.
func NewResilient(inner Source, sourceID string, limiter *ratelimit.Registry, breakers *resilience.CircuitBreakerRegistry, log zerolog.Logger) *Resilient {
	cb := breakers.Register(resilience.CircuitBreakerConfig{Name: sourceID})
	raw, _ := inner.(rawFetcher)
	return &Resilient{
		inner:    inner,
		raw:      raw,
		sourceID: sourceID,
		limiter:  limiter,
		breaker:  cb,
		log:      log.With().Str("component", "adapter_resilient").Str("source_id", sourceID).Logger(),
	}
}

// Fetch consumes a rate-limit token and routes the call through the circuit
// breaker; any rejection (no token, breaker open, transport error) degrades
// to an empty slice rather than propagating.
func (r *Resilient) Fetch(ctx context.Context, req Request) []model.EvidenceCandidate {
	if !r.limiter.Allow(r.sourceID) {
		r.log.Debug().Msg("rate limit exhausted, skipping fetch")
		return nil
	}

	var out []model.EvidenceCandidate
	err := r.breaker.Call(func() error {
		if r.raw != nil {
			var fetchErr error
			out, fetchErr = r.raw.fetchRaw(ctx, req)
			return fetchErr
		}
		out = r.inner.Fetch(ctx, req)
		return nil
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("circuit breaker rejected fetch")
		return nil
	}
	return out
}
