package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/scorer"
	"github.com/obelus-labs/veritas/internal/veritaserr"
)

// MemoryStore is an in-process Store backed by plain maps, guarded by a
// single mutex. It exists for tests and for single-process demo runs; it
// implements the same uniqueness/atomicity contract as the durable
// backends.
type MemoryStore struct {
	mu sync.Mutex

	sources map[string]model.Source
	claims  map[string]model.Claim
	// claimHashIndex enforces uniqueness of (source_id, content_hash).
	claimHashIndex map[string]string // sourceID+"\x00"+contentHash -> claim id
	evidence map[string][]evidenceRecord
	// evidenceURLIndex enforces uniqueness of (claim_id, url).
	evidenceURLIndex map[string]bool
}

type evidenceRecord struct {
	evidence model.ScoredEvidence
	status   model.Status
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sources:          make(map[string]model.Source),
		claims:           make(map[string]model.Claim),
		claimHashIndex:   make(map[string]string),
		evidence:         make(map[string][]evidenceRecord),
		evidenceURLIndex: make(map[string]bool),
	}
}

func (m *MemoryStore) SaveSource(ctx context.Context, source model.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source.ID] = source
	return nil
}

func (m *MemoryStore) GetSource(ctx context.Context, id string) (model.Source, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	return s, ok, nil
}

func (m *MemoryStore) ListSources(ctx context.Context) ([]model.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Source, 0, len(m.sources))
	for _, s := range m.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SaveClaim(ctx context.Context, claim model.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := claimHashKey(claim.SourceID, claim.ContentHash)
	if existing, ok := m.claimHashIndex[key]; ok && existing != claim.ID {
		return veritaserr.NewPersistenceError(fmt.Errorf("duplicate claim for source %q content_hash %q", claim.SourceID, claim.ContentHash))
	}
	m.claimHashIndex[key] = claim.ID
	m.claims[claim.ID] = claim
	return nil
}

func (m *MemoryStore) GetClaim(ctx context.Context, id string) (model.Claim, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	return c, ok, nil
}

func (m *MemoryStore) ListClaimsBySource(ctx context.Context, sourceID string) ([]model.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Claim
	for _, c := range m.claims {
		if c.SourceID == sourceID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListClaims(ctx context.Context) ([]model.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Claim, 0, len(m.claims))
	for _, c := range m.claims {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) SaveEvidence(ctx context.Context, ev model.ScoredEvidence, status model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	urlKey := ev.DedupKey()
	if m.evidenceURLIndex[urlKey] {
		return veritaserr.NewPersistenceError(fmt.Errorf("duplicate evidence for claim %q url %q", ev.ClaimID, ev.Candidate.URL))
	}
	claim, ok := m.claims[ev.ClaimID]
	if !ok {
		return veritaserr.NewPersistenceError(fmt.Errorf("evidence references unknown claim %q", ev.ClaimID))
	}

	m.evidenceURLIndex[urlKey] = true
	m.evidence[ev.ClaimID] = append(m.evidence[ev.ClaimID], evidenceRecord{evidence: ev, status: status})

	statuses := make([]model.Status, 0, len(m.evidence[ev.ClaimID]))
	for _, e := range m.evidence[ev.ClaimID] {
		statuses = append(statuses, e.status)
	}
	claim.Status = scorer.AggregateStatus(statuses)
	m.claims[ev.ClaimID] = claim
	return nil
}

func (m *MemoryStore) ListEvidence(ctx context.Context, claimID string) ([]model.ScoredEvidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ScoredEvidence, len(m.evidence[claimID]))
	for i, r := range m.evidence[claimID] {
		out[i] = r.evidence
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

func claimHashKey(sourceID, contentHash string) string {
	return sourceID + "\x00" + contentHash
}
