package extractor

import "github.com/obelus-labs/veritas/internal/textproc"

// fuzzyDuplicateThreshold is the token-ratio similarity above which a new
// candidate is rejected as a local fuzzy duplicate (§4.D).
const fuzzyDuplicateThreshold = 0.85

// localDeduper tracks a single source's accepted claim texts and hashes, so
// Extract can reject local exact and fuzzy duplicates while letting
// cross-source duplicates (tracked only by global_hash, never rejected here)
// pass through for the aggregator to group.
type localDeduper struct {
	contentHashes map[string]bool
	texts         []string
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{contentHashes: make(map[string]bool)}
}

// accept reports whether a candidate with the given content hash and
// (already-normalized-for-hashing) text should be kept. It records the
// text/hash as seen only when accepted, so a rejected duplicate never
// itself becomes a dedup target.
func (d *localDeduper) accept(contentHash, text string) (ok bool, reason RejectReason) {
	if d.contentHashes[contentHash] {
		return false, RejectDuplicate
	}
	for _, existing := range d.texts {
		if textproc.TokenSimilarity(existing, text) >= fuzzyDuplicateThreshold {
			return false, RejectFuzzyDuplicate
		}
	}
	d.contentHashes[contentHash] = true
	d.texts = append(d.texts, text)
	return true, ""
}
