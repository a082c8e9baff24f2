// Package adapter implements the pluggable evidence-source contract (§4.F):
// a flat, tagged-variant registry keyed by source id, each entry a single
// fetch operation that never raises into the orchestrator.
package adapter

import (
	"context"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/router"
	"github.com/obelus-labs/veritas/internal/textproc"
)

// Request carries everything an adapter needs to fetch and normalize
// candidates for one claim (§4.F input contract).
type Request struct {
	ClaimText string
	Entities  []textproc.EntityMention
	Numbers   []model.NumberMention
	Dates     []textproc.DateMention
	Category  model.Category
}

// Source is the single-method capability every evidence adapter implements.
// Implementations must never return an error: network, HTTP, parse,
// rate-limit and timeout failures are all absorbed internally and resolve
// to an empty slice (§4.F, §7 "never surfaces").
type Source interface {
	Fetch(ctx context.Context, req Request) []model.EvidenceCandidate
}

// Registry is a flat source-id → Source table (Design Notes §9: "avoid
// deep inheritance; prefer a flat registry keyed by source id").
type Registry struct {
	sources map[router.SourceID]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[router.SourceID]Source)}
}

// Register adds or replaces the Source for id.
func (r *Registry) Register(id router.SourceID, s Source) {
	r.sources[id] = s
}

// Get returns the Source registered for id, if any.
func (r *Registry) Get(id router.SourceID) (Source, bool) {
	s, ok := r.sources[id]
	return s, ok
}

// Fetch looks up id and calls its Source, returning an empty slice for any
// unregistered id rather than erroring — an adapter gap degrades gracefully
// exactly like an adapter failure would.
func (r *Registry) Fetch(ctx context.Context, id router.SourceID, req Request) []model.EvidenceCandidate {
	s, ok := r.sources[id]
	if !ok {
		return nil
	}
	return s.Fetch(ctx, req)
}
