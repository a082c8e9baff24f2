package store

import (
	"context"
	"testing"
	"time"

	"github.com/obelus-labs/veritas/internal/model"
)

func TestElasticsearchIndexClaimAndSearch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	idx, err := NewElasticsearchIndex(ctx, "http://localhost:9200", "veritas-claims-test")
	if err != nil {
		t.Skip("elasticsearch not available for testing")
	}

	claim := sampleClaim("c1", "src1", "hash1")
	if err := idx.IndexClaim(ctx, claim); err != nil {
		t.Fatalf("index claim: %v", err)
	}

	ids, err := idx.SearchClaims(ctx, "Alphabet revenue", model.CategoryFinance)
	if err != nil {
		t.Fatalf("search claims: %v", err)
	}
	if len(ids) == 0 {
		t.Fatalf("expected at least one hit")
	}
}
