// Package aggregator implements the §4.H cross-source aggregation: grouping
// claims that describe the same underlying fact, building each group's
// timeline, ranking top claims, and flagging advisory contradictions. Every
// operation here is a pure function of its arguments - grouping order and
// timeline ordering are driven entirely by recorded timestamps (claim
// CreatedAt, source IngestedAt, claim StartS), never the wall clock and
// never a decaying half-life score.
package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/textproc"
)

// FuzzyGroupThreshold is the token-similarity cutoff for grouping two claims
// that do not share a GlobalHash but describe the same fact (§4.H, same
// threshold as local fuzzy dedup).
const FuzzyGroupThreshold = 0.85

// ContradictionNumberFactor is the minimum ratio (or its inverse) between
// two matched numbers for a pair of groups to be flagged as an advisory
// contradiction (§4.H).
const ContradictionNumberFactor = 1.25

// ContradictionMaxKeyphraseAlign is the keyphrase-alignment ceiling below
// which two groups' representative claims are considered to be describing
// the same topic differently rather than restating each other (§4.H).
const ContradictionMaxKeyphraseAlign = 0.3

// Aggregator groups claims, builds timelines and flags advisory
// contradictions. It holds only a shared lexicon and is safe for concurrent
// use; it keeps no mutable state of its own.
type Aggregator struct {
	Lexicon *lexicon.Lexicon
}

// New builds an Aggregator over the given lexicon.
func New(lex *lexicon.Lexicon) *Aggregator {
	return &Aggregator{Lexicon: lex}
}

// Group partitions claims into ClaimGroups: an exact pass on GlobalHash
// first, then a windowed fuzzy pass within (week, category) buckets for
// claims left ungrouped by the exact pass (§4.H). sources resolves a claim's
// SourceID to its ingestion record for timeline construction; a claim whose
// source is missing from the map still groups, with a zero-time timeline
// entry offset by StartS alone.
func (a *Aggregator) Group(claims []model.Claim, sources map[string]model.Source) []model.ClaimGroup {
	byHash := make(map[string][]model.Claim)
	var order []string
	for _, c := range claims {
		if _, ok := byHash[c.GlobalHash]; !ok {
			order = append(order, c.GlobalHash)
		}
		byHash[c.GlobalHash] = append(byHash[c.GlobalHash], c)
	}

	var groups []model.ClaimGroup
	var ungrouped []model.Claim
	for _, hash := range order {
		bucket := byHash[hash]
		if len(bucket) > 1 {
			groups = append(groups, a.buildGroup(hash, bucket, sources))
			continue
		}
		ungrouped = append(ungrouped, bucket...)
	}

	groups = append(groups, a.fuzzyGroup(ungrouped, sources)...)

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].FirstSeen.Before(groups[j].FirstSeen)
	})
	return groups
}

// fuzzyGroup buckets claims by (ISO week of CreatedAt, Category) and then
// greedily merges claims whose text similarity meets FuzzyGroupThreshold
// within the same bucket (§4.H "windowed fuzzy grouping"). Claims that match
// no other claim in their bucket become singleton groups.
func (a *Aggregator) fuzzyGroup(claims []model.Claim, sources map[string]model.Source) []model.ClaimGroup {
	type bucketKey struct {
		year, week int
		category   model.Category
	}
	buckets := make(map[bucketKey][]model.Claim)
	var keyOrder []bucketKey
	for _, c := range claims {
		year, week := c.CreatedAt.ISOWeek()
		k := bucketKey{year, week, c.Category}
		if _, ok := buckets[k]; !ok {
			keyOrder = append(keyOrder, k)
		}
		buckets[k] = append(buckets[k], c)
	}

	var groups []model.ClaimGroup
	for _, k := range keyOrder {
		bucket := buckets[k]
		assigned := make([]bool, len(bucket))
		for i := range bucket {
			if assigned[i] {
				continue
			}
			members := []model.Claim{bucket[i]}
			assigned[i] = true
			for j := i + 1; j < len(bucket); j++ {
				if assigned[j] {
					continue
				}
				if textproc.TokenSimilarity(bucket[i].Text, bucket[j].Text) >= FuzzyGroupThreshold {
					members = append(members, bucket[j])
					assigned[j] = true
				}
			}
			hash := members[0].GlobalHash
			if len(members) == 1 {
				hash = members[0].ContentHash
			}
			groups = append(groups, a.buildGroup(hash, members, sources))
		}
	}
	return groups
}

// buildGroup constructs a ClaimGroup's timeline and FirstSeen from the
// group's member claims, ordered by source IngestedAt with StartS as a
// same-source tiebreak (§4.H "timeline ordered by source ingested_at or
// claim start_s").
func (a *Aggregator) buildGroup(hash string, members []model.Claim, sources map[string]model.Source) model.ClaimGroup {
	claimIDs := make([]string, 0, len(members))
	timeline := make([]model.SourceOccurrence, 0, len(members))
	for _, c := range members {
		claimIDs = append(claimIDs, c.ID)
		ts := sources[c.SourceID].IngestedAt.Add(secondsToDuration(c.StartS))
		timeline = append(timeline, model.SourceOccurrence{
			SourceID:  c.SourceID,
			ClaimID:   c.ID,
			Timestamp: ts,
		})
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp.Before(timeline[j].Timestamp)
	})
	firstSeen := timeline[0].Timestamp
	return model.ClaimGroup{
		ID:         fmt.Sprintf("grp_%s", hash),
		GlobalHash: hash,
		Category:   members[0].Category,
		ClaimIDs:   claimIDs,
		Timeline:   timeline,
		FirstSeen:  firstSeen,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// TopClaims ranks groups by distinct source count (desc), total occurrences
// (desc), then first-seen (asc) - the §4.H top-claims ordering - and
// returns at most limit groups. limit <= 0 returns every group, ranked.
func (a *Aggregator) TopClaims(groups []model.ClaimGroup, limit int) []model.ClaimGroup {
	ranked := make([]model.ClaimGroup, len(groups))
	copy(ranked, groups)
	sort.SliceStable(ranked, func(i, j int) bool {
		gi, gj := ranked[i], ranked[j]
		if gi.SourceCount() != gj.SourceCount() {
			return gi.SourceCount() > gj.SourceCount()
		}
		if gi.Occurrences() != gj.Occurrences() {
			return gi.Occurrences() > gj.Occurrences()
		}
		return gi.FirstSeen.Before(gj.FirstSeen)
	})
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// ContradictionFlags compares every pair of groups in the same category and
// advisory-flags pairs whose representative claims share at least two
// entities, diverge on a matched number by ContradictionNumberFactor (or
// sign), and whose keyphrase alignment falls below
// ContradictionMaxKeyphraseAlign (§4.H). claimsByID resolves a group's first
// claim id to its text for the comparison; groups never have their Status
// mutated by this function.
func (a *Aggregator) ContradictionFlags(groups []model.ClaimGroup, claimsByID map[string]model.Claim) []model.ContradictionFlag {
	var flags []model.ContradictionFlag
	for i := 0; i < len(groups); i++ {
		ci, ok := representative(groups[i], claimsByID)
		if !ok {
			continue
		}
		for j := i + 1; j < len(groups); j++ {
			if groups[i].Category != groups[j].Category {
				continue
			}
			cj, ok := representative(groups[j], claimsByID)
			if !ok {
				continue
			}
			shared := sharedEntities(ci.Text, cj.Text, a.Lexicon)
			if len(shared) < 2 {
				continue
			}
			if !numbersDiverge(ci.Text, cj.Text) {
				continue
			}
			_, n := textproc.LongestCommonNgram(ci.Text, cj.Text, 3)
			claimTokens := len(textproc.Words(ci.Text))
			if claimTokens == 0 {
				continue
			}
			align := float64(n) / float64(claimTokens)
			if align >= ContradictionMaxKeyphraseAlign {
				continue
			}
			flags = append(flags, model.ContradictionFlag{
				GroupA:         groups[i].ID,
				GroupB:         groups[j].ID,
				SharedEntities: shared,
				Category:       groups[i].Category,
			})
		}
	}
	return flags
}

func representative(g model.ClaimGroup, claimsByID map[string]model.Claim) (model.Claim, bool) {
	if len(g.ClaimIDs) == 0 {
		return model.Claim{}, false
	}
	c, ok := claimsByID[g.ClaimIDs[0]]
	return c, ok
}

func sharedEntities(a, b string, lex *lexicon.Lexicon) []string {
	ea := textproc.DetectEntities(a, lex)
	eb := textproc.DetectEntities(b, lex)
	inB := make(map[string]bool, len(eb))
	for _, e := range eb {
		inB[strings.ToLower(e.Text)] = true
	}
	var shared []string
	seen := make(map[string]bool)
	for _, e := range ea {
		key := strings.ToLower(e.Text)
		if inB[key] && !seen[key] {
			seen[key] = true
			shared = append(shared, e.Text)
		}
	}
	return shared
}

func numbersDiverge(a, b string) bool {
	na := textproc.DetectNumbers(a)
	nb := textproc.DetectNumbers(b)
	for _, x := range na {
		for _, y := range nb {
			if x.Value == 0 || y.Value == 0 {
				continue
			}
			ratio := x.Value / y.Value
			if ratio < 0 {
				return true
			}
			if ratio >= ContradictionNumberFactor || ratio <= 1/ContradictionNumberFactor {
				return true
			}
		}
	}
	return false
}
