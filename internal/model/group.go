package model

import "time"

// SourceOccurrence is one appearance of a claim group within a source's
// timeline, ordered by the source's IngestedAt (or the claim's StartS when
// available within that source).
type SourceOccurrence struct {
	SourceID  string    `json:"source_id"`
	ClaimID   string    `json:"claim_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ClaimGroup is a set of claims the aggregator considers equivalent: either
// an exact GlobalHash match, or fuzzy-grouped within a (week, category)
// window (§4.H). Groups are computed, never stored as a back-reference on
// Claim (Design Notes §9: "groups reference claim ids; claims do not point
// back to groups").
type ClaimGroup struct {
	ID         string             `json:"id"`
	GlobalHash string             `json:"global_hash"`
	Category   Category           `json:"category"`
	ClaimIDs   []string           `json:"claim_ids"`
	Timeline   []SourceOccurrence `json:"timeline"`
	FirstSeen  time.Time          `json:"first_seen"`
}

// SourceCount returns the number of distinct sources contributing to the
// group, used by top-claims ranking (§4.H).
func (g ClaimGroup) SourceCount() int {
	seen := make(map[string]bool, len(g.Timeline))
	for _, occ := range g.Timeline {
		seen[occ.SourceID] = true
	}
	return len(seen)
}

// Occurrences returns the total number of recorded occurrences (claims) in
// the group, used as the secondary top-claims sort key.
func (g ClaimGroup) Occurrences() int {
	return len(g.Timeline)
}

// ContradictionFlag is an advisory cross-group signal (§4.H); it never
// mutates any claim's Status.
type ContradictionFlag struct {
	GroupA        string   `json:"group_a"`
	GroupB        string   `json:"group_b"`
	SharedEntities []string `json:"shared_entities"`
	Category      Category `json:"category"`
}
