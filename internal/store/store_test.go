package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/veritaserr"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleClaim(id, sourceID, contentHash string) model.Claim {
	return model.Claim{
		ID:                 id,
		SourceID:           sourceID,
		Text:               "Alphabet reported revenue of $96.5 billion in the fourth quarter of 2024.",
		StartS:             1.5,
		EndS:               6.0,
		ContentHash:        contentHash,
		GlobalHash:         "g-" + contentHash,
		ConfidenceLanguage: model.ConfidenceDefinitive,
		Category:           model.CategoryFinance,
		SignalLog:          []string{"number_presence"},
		Status:             model.StatusUnknown,
		CreatedAt:          time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
	}
}

func sampleEvidence(claimID, url string, score float64) model.ScoredEvidence {
	return model.ScoredEvidence{
		ClaimID: claimID,
		Candidate: model.EvidenceCandidate{
			SourceAPI:    "sec_edgar",
			EvidenceType: model.EvidenceFiling,
			URL:          url,
		},
		Score:     score,
		Breakdown: map[model.SignalName]float64{model.SignalTokenOverlap: score},
	}
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	mem := NewMemoryStore()

	dbPath := filepath.Join(t.TempDir(), "veritas.db")
	sqlite, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": mem,
		"sqlite": sqlite,
	}
}

func TestStoreSaveAndGetClaim(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			claim := sampleClaim("c1", "src1", "hash1")
			require.NoError(t, s.SaveClaim(ctx, claim))

			got, ok, err := s.GetClaim(ctx, "c1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, claim.Text, got.Text)
			assert.Equal(t, claim.GlobalHash, got.GlobalHash)
		})
	}
}

func TestStoreDuplicateClaimHashRejected(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SaveClaim(ctx, sampleClaim("c1", "src1", "hash1")))

			err := s.SaveClaim(ctx, sampleClaim("c2", "src1", "hash1"))
			require.Error(t, err)
			kind, ok := veritaserr.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, veritaserr.KindPersistence, kind)
		})
	}
}

func TestStoreEvidenceUpdatesClaimStatus(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			claim := sampleClaim("c1", "src1", "hash1")
			require.NoError(t, s.SaveClaim(ctx, claim))

			require.NoError(t, s.SaveEvidence(ctx, sampleEvidence("c1", "https://example.com/1", 90), model.StatusSupported))

			got, ok, err := s.GetClaim(ctx, "c1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, model.StatusSupported, got.Status)

			evs, err := s.ListEvidence(ctx, "c1")
			require.NoError(t, err)
			require.Len(t, evs, 1)
			assert.Equal(t, "https://example.com/1", evs[0].Candidate.URL)
		})
	}
}

func TestStoreDuplicateEvidenceURLRejected(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SaveClaim(ctx, sampleClaim("c1", "src1", "hash1")))
			require.NoError(t, s.SaveEvidence(ctx, sampleEvidence("c1", "https://example.com/1", 90), model.StatusSupported))

			err := s.SaveEvidence(ctx, sampleEvidence("c1", "https://example.com/1", 50), model.StatusPartial)
			require.Error(t, err)
			kind, ok := veritaserr.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, veritaserr.KindPersistence, kind)
		})
	}
}

func TestStoreAggregateStatusDowngradesNeverHappenWithinRun(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SaveClaim(ctx, sampleClaim("c1", "src1", "hash1")))
			require.NoError(t, s.SaveEvidence(ctx, sampleEvidence("c1", "https://example.com/1", 40), model.StatusUnknown))

			got, _, err := s.GetClaim(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, model.StatusUnknown, got.Status)

			require.NoError(t, s.SaveEvidence(ctx, sampleEvidence("c1", "https://example.com/2", 90), model.StatusSupported))
			got, _, err = s.GetClaim(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, model.StatusSupported, got.Status)
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "veritas.db")

	s1, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.SaveClaim(ctx, sampleClaim("c1", "src1", "hash1")))
	require.NoError(t, s1.Close())

	_, statErr := os.Stat(dbPath)
	require.NoError(t, statErr)

	s2, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s2.Close() })

	got, ok, err := s2.GetClaim(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hash1", got.ContentHash)
}

func TestRedisCompletionBuffer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	buf := NewRedisCompletionBuffer(client)
	ctx := context.Background()

	complete, err := buf.IsComplete(ctx, "c1", []string{"sec_edgar", "fred"})
	require.NoError(t, err)
	assert.False(t, complete)

	require.NoError(t, buf.MarkDone(ctx, "c1", "sec_edgar"))
	complete, err = buf.IsComplete(ctx, "c1", []string{"sec_edgar", "fred"})
	require.NoError(t, err)
	assert.False(t, complete)

	require.NoError(t, buf.MarkDone(ctx, "c1", "fred"))
	complete, err = buf.IsComplete(ctx, "c1", []string{"sec_edgar", "fred"})
	require.NoError(t, err)
	assert.True(t, complete)

	done, err := buf.Done(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fred", "sec_edgar"}, done)

	require.NoError(t, buf.Clear(ctx, "c1"))
	done, err = buf.Done(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, done)
}
