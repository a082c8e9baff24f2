// Package ratelimit provides the per-adapter token buckets the orchestrator
// wraps every evidence source with (§5): independent buckets, default
// refill 1 token/sec with a burst of 5, exhaustion yielding an immediate
// "no token" signal rather than blocking past an adapter's own timeout.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// DefaultRefillPerSecond and DefaultBurst are the §5 defaults.
const (
	DefaultRefillPerSecond = 1
	DefaultBurst           = 5
)

// Registry holds one independent limiter per source id, created lazily on
// first use so callers never have to pre-register every adapter.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	refill   rate.Limit
	burst    int
}

// NewRegistry builds a registry using the given per-second refill and burst;
// zero values fall back to the §5 defaults.
func NewRegistry(refillPerSecond float64, burst int) *Registry {
	if refillPerSecond <= 0 {
		refillPerSecond = DefaultRefillPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &Registry{
		limiters: make(map[string]*rate.Limiter),
		refill:   rate.Limit(refillPerSecond),
		burst:    burst,
	}
}

// Allow reports whether sourceID's bucket currently has a token available,
// consuming one if so. It never blocks.
func (r *Registry) Allow(sourceID string) bool {
	return r.limiterFor(sourceID).Allow()
}

// SetLimit pre-seeds sourceID's bucket with its own refill/burst, overriding
// the registry-wide default for that one source. Call it before the first
// Allow for the source; a later call replaces the bucket outright (any
// tokens already accrued under the previous rate are lost).
func (r *Registry) SetLimit(sourceID string, refillPerSecond float64, burst int) {
	if refillPerSecond <= 0 {
		refillPerSecond = DefaultRefillPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiters[sourceID] = rate.NewLimiter(rate.Limit(refillPerSecond), burst)
}

func (r *Registry) limiterFor(sourceID string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[sourceID]
	if !ok {
		l = rate.NewLimiter(r.refill, r.burst)
		r.limiters[sourceID] = l
	}
	return l
}
