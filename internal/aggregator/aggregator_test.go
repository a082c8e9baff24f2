package aggregator

import (
	"testing"
	"time"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func src(id string, ingested time.Time) model.Source {
	return model.Source{ID: id, Kind: model.SourceText, IngestedAt: ingested}
}

func TestGroupExactHashMatch(t *testing.T) {
	a := New(lexicon.Default())
	t1 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	claims := []model.Claim{
		{ID: "c1", SourceID: "s1", GlobalHash: "h1", Category: model.CategoryFinance, CreatedAt: t1, Text: "Alphabet reported revenue of $96.5 billion in Q4 2024."},
		{ID: "c2", SourceID: "s2", GlobalHash: "h1", Category: model.CategoryFinance, CreatedAt: t2, Text: "Alphabet reported revenue of $96.5 billion in Q4 2024."},
	}
	sources := map[string]model.Source{
		"s1": src("s1", t1),
		"s2": src("s2", t2),
	}

	groups := a.Group(claims, sources)
	require.Len(t, groups, 1)
	assert.Equal(t, "h1", groups[0].GlobalHash)
	assert.ElementsMatch(t, []string{"c1", "c2"}, groups[0].ClaimIDs)
	assert.Equal(t, 2, groups[0].SourceCount())
	assert.Equal(t, t1, groups[0].FirstSeen)
}

func TestGroupFuzzyMatchWithinWindow(t *testing.T) {
	a := New(lexicon.Default())
	week := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

	claims := []model.Claim{
		{ID: "c1", SourceID: "s1", GlobalHash: "hA", ContentHash: "cA", Category: model.CategoryFinance, CreatedAt: week, Text: "Alphabet reported quarterly revenue of $96.5 billion for investors this week."},
		{ID: "c2", SourceID: "s2", GlobalHash: "hB", ContentHash: "cB", Category: model.CategoryFinance, CreatedAt: week.Add(2 * time.Hour), Text: "Alphabet reported quarterly revenue of $96.5 billion for shareholders this week."},
	}
	sources := map[string]model.Source{
		"s1": src("s1", week),
		"s2": src("s2", week.Add(2 * time.Hour)),
	}

	groups := a.Group(claims, sources)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].ClaimIDs, 2)
}

func TestGroupDistinctClaimsStaySeparate(t *testing.T) {
	a := New(lexicon.Default())
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

	claims := []model.Claim{
		{ID: "c1", SourceID: "s1", GlobalHash: "hA", ContentHash: "cA", Category: model.CategoryFinance, CreatedAt: now, Text: "Alphabet reported quarterly revenue of $96.5 billion this week."},
		{ID: "c2", SourceID: "s2", GlobalHash: "hB", ContentHash: "cB", Category: model.CategoryHealth, CreatedAt: now, Text: "The FDA approved a new drug for treating diabetes patients."},
	}
	sources := map[string]model.Source{
		"s1": src("s1", now),
		"s2": src("s2", now),
	}

	groups := a.Group(claims, sources)
	assert.Len(t, groups, 2)
}

func TestTopClaimsRanking(t *testing.T) {
	a := New(lexicon.Default())
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	groups := []model.ClaimGroup{
		{
			ID:        "g_low",
			ClaimIDs:  []string{"c1"},
			FirstSeen: t0,
			Timeline:  []model.SourceOccurrence{{SourceID: "s1", Timestamp: t0}},
		},
		{
			ID:       "g_high",
			ClaimIDs: []string{"c2", "c3", "c4"},
			FirstSeen: t0.Add(time.Hour),
			Timeline: []model.SourceOccurrence{
				{SourceID: "s1", Timestamp: t0.Add(time.Hour)},
				{SourceID: "s2", Timestamp: t0.Add(2 * time.Hour)},
				{SourceID: "s3", Timestamp: t0.Add(3 * time.Hour)},
			},
		},
	}

	ranked := a.TopClaims(groups, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, "g_high", ranked[0].ID)
	assert.Equal(t, "g_low", ranked[1].ID)

	top1 := a.TopClaims(groups, 1)
	assert.Len(t, top1, 1)
	assert.Equal(t, "g_high", top1[0].ID)
}

func TestContradictionFlagsDivergingNumbers(t *testing.T) {
	a := New(lexicon.Default())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	claimsByID := map[string]model.Claim{
		"c1": {ID: "c1", Category: model.CategoryFinance, Text: "Acme Corp reported Nevada plant output of 100 units in March."},
		"c2": {ID: "c2", Category: model.CategoryFinance, Text: "Acme Corp disputed the Nevada plant figure, citing 400 units instead."},
	}
	groups := []model.ClaimGroup{
		{ID: "g1", Category: model.CategoryFinance, ClaimIDs: []string{"c1"}, FirstSeen: now},
		{ID: "g2", Category: model.CategoryFinance, ClaimIDs: []string{"c2"}, FirstSeen: now},
	}

	flags := a.ContradictionFlags(groups, claimsByID)
	require.Len(t, flags, 1)
	assert.Equal(t, "g1", flags[0].GroupA)
	assert.Equal(t, "g2", flags[0].GroupB)
	assert.GreaterOrEqual(t, len(flags[0].SharedEntities), 2)
}

func TestContradictionFlagsNoneWhenAgreeing(t *testing.T) {
	a := New(lexicon.Default())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	claimsByID := map[string]model.Claim{
		"c1": {ID: "c1", Category: model.CategoryFinance, Text: "Acme Corp reported Nevada plant output of 100 units in March."},
		"c2": {ID: "c2", Category: model.CategoryFinance, Text: "Acme Corp reported Nevada plant output of 100 units in March."},
	}
	groups := []model.ClaimGroup{
		{ID: "g1", Category: model.CategoryFinance, ClaimIDs: []string{"c1"}, FirstSeen: now},
		{ID: "g2", Category: model.CategoryFinance, ClaimIDs: []string{"c2"}, FirstSeen: now},
	}

	flags := a.ContradictionFlags(groups, claimsByID)
	assert.Empty(t, flags)
}
