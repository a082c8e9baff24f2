// Package store defines the persistence contract (§6) and its
// implementations: an in-memory store for tests, a SQLite-backed store of
// record, and an optional Elasticsearch enrichment index. The schema-level
// requirements the core imposes on every implementation are: uniqueness of
// (source_id, claim.content_hash), uniqueness of (claim_id,
// candidate.url), and indexability of global_hash.
package store

import (
	"context"

	"github.com/obelus-labs/veritas/internal/model"
)

// Store is the persistence contract every backend implements. A claim and
// its evidence are written atomically: SaveEvidence also recomputes and
// persists the claim's aggregate status in the same transaction.
type Store interface {
	SaveSource(ctx context.Context, source model.Source) error
	GetSource(ctx context.Context, id string) (model.Source, bool, error)
	ListSources(ctx context.Context) ([]model.Source, error)

	// SaveClaim persists a newly extracted claim. It fails with a
	// veritaserr.PersistenceError if (source_id, content_hash) already
	// exists for a different claim id.
	SaveClaim(ctx context.Context, claim model.Claim) error
	GetClaim(ctx context.Context, id string) (model.Claim, bool, error)
	ListClaimsBySource(ctx context.Context, sourceID string) ([]model.Claim, error)
	ListClaims(ctx context.Context) ([]model.Claim, error)

	// SaveEvidence persists a scored candidate (and the guardrail status
	// the scorer computed for it) and updates the owning claim's Status
	// to the highest-ranked verdict across all of its persisted
	// evidence, atomically. It fails with a veritaserr.PersistenceError
	// if (claim_id, candidate.url) already exists.
	SaveEvidence(ctx context.Context, evidence model.ScoredEvidence, status model.Status) error
	ListEvidence(ctx context.Context, claimID string) ([]model.ScoredEvidence, error)

	Close() error
}

// RunStats tallies one orchestrator run's outcome counts (§4.I), kept here
// since every Store-backed run reports through the same shape.
type RunStats struct {
	Extracted int
	Evidenced int
	Supported int
	Partial   int
	Unknown   int
	Errored   int
}
