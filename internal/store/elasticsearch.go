package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/resilience"
	"github.com/obelus-labs/veritas/internal/veritaserr"
)

// ElasticsearchIndex is a pure enrichment index over claim text: full-text
// search across large corpora, never the system of record. It does not
// implement Store - the uniqueness/atomicity constraints in §6 are
// enforced at the SQLite layer; this index is a swappable, optional
// add-on a caller indexes claims into after SQLiteStore.SaveClaim
// succeeds. Grounded on internal/storage/elasticsearch.go's client-wrapper
// construction (index name, retry/backoff config) without the bulk-buffer
// background flushing, since the core never needs high-throughput bulk
// ingestion paths.
type ElasticsearchIndex struct {
	client     *elasticsearch.Client
	indexName  string
}

// NewElasticsearchIndex creates a claims index against the given URL,
// verifying connectivity and creating the index with a minimal text
// mapping if absent. The client's connection pool and retry behavior
// follow resilience.DefaultElasticsearchPoolConfig rather than the
// library's zero values.
func NewElasticsearchIndex(ctx context.Context, url, indexName string) (*ElasticsearchIndex, error) {
	poolCfg := resilience.DefaultElasticsearchPoolConfig()

	transport := &http.Transport{
		MaxIdleConns:        poolCfg.MaxIdleConns,
		MaxIdleConnsPerHost: poolCfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     poolCfg.IdleConnTimeout,
	}
	if poolCfg.KeepAlive {
		transport.DialContext = (&net.Dialer{KeepAlive: poolCfg.KeepAliveInterval}).DialContext
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:         []string{url},
		RetryOnStatus:     poolCfg.RetryOnStatus,
		MaxRetries:        poolCfg.MaxRetries,
		RetryBackoff:      func(attempt int) time.Duration { return poolCfg.RetryInitialWait * time.Duration(attempt) },
		EnableDebugLogger: false,
		Transport:         transport,
	})
	if err != nil {
		return nil, veritaserr.NewConfigError(fmt.Errorf("create es client: %w", err))
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return nil, veritaserr.NewConfigError(fmt.Errorf("ping es: %w", err))
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, veritaserr.NewConfigError(fmt.Errorf("es ping failed: %s", res.Status()))
	}

	idx := &ElasticsearchIndex{client: client, indexName: indexName}
	if err := idx.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (e *ElasticsearchIndex) ensureIndex(ctx context.Context) error {
	existsRes, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return veritaserr.NewPersistenceError(err)
	}
	defer existsRes.Body.Close()
	if existsRes.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"text":        {"type": "text"},
				"category":    {"type": "keyword"},
				"status":      {"type": "keyword"},
				"global_hash": {"type": "keyword"},
				"source_id":   {"type": "keyword"}
			}
		}
	}`
	createRes, err := e.client.Indices.Create(e.indexName,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return veritaserr.NewPersistenceError(err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return veritaserr.NewPersistenceError(fmt.Errorf("create index: %s", createRes.Status()))
	}
	return nil
}

type claimDocument struct {
	Text       string `json:"text"`
	Category   string `json:"category"`
	Status     string `json:"status"`
	GlobalHash string `json:"global_hash"`
	SourceID   string `json:"source_id"`
}

// IndexClaim upserts a claim into the enrichment index, keyed by claim ID.
func (e *ElasticsearchIndex) IndexClaim(ctx context.Context, claim model.Claim) error {
	doc := claimDocument{
		Text:       claim.Text,
		Category:   string(claim.Category),
		Status:     string(claim.Status),
		GlobalHash: claim.GlobalHash,
		SourceID:   claim.SourceID,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return veritaserr.NewPersistenceError(err)
	}

	req := esapi.IndexRequest{
		Index:      e.indexName,
		DocumentID: claim.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return veritaserr.NewPersistenceError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return veritaserr.NewPersistenceError(fmt.Errorf("index claim %q: %s", claim.ID, res.Status()))
	}
	return nil
}

// SearchClaims runs a full-text match query over claim text, optionally
// restricted to one category, and returns matching claim IDs in
// Elasticsearch's relevance order.
func (e *ElasticsearchIndex) SearchClaims(ctx context.Context, query string, category model.Category) ([]string, error) {
	must := []map[string]interface{}{
		{"match": map[string]interface{}{"text": query}},
	}
	if category != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"category": string(category)}})
	}
	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
	})
	if err != nil {
		return nil, veritaserr.NewPersistenceError(err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, veritaserr.NewPersistenceError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, veritaserr.NewPersistenceError(fmt.Errorf("search claims: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, veritaserr.NewPersistenceError(err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
