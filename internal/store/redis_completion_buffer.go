package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/obelus-labs/veritas/internal/resilience"
	"github.com/obelus-labs/veritas/internal/veritaserr"
)

// RedisCompletionBuffer is a Redis-backed (claim_id, source_id)
// completion keyset for running fan-out across processes (§5
// [EXPANSION]). The in-process orchestrator in this module does not call
// it; it keeps its per-claim results in memory. It records which (claim, adapter source)
// pairs have finished fetch+score, so a drain pass can tell when a claim's
// whole fan-out is done without any process needing in-memory state for
// every in-flight claim. It uses a plain Redis set per claim rather than
// a decaying activity counter, since completion is a one-shot fact (every
// expected source fetched or not), never something that needs to fade.
type RedisCompletionBuffer struct {
	client *redis.Client
}

// NewRedisCompletionBuffer wraps an existing Redis client.
func NewRedisCompletionBuffer(client *redis.Client) *RedisCompletionBuffer {
	return &RedisCompletionBuffer{client: client}
}

// NewRedisClientFromURL builds a *redis.Client against url using
// resilience.DefaultRedisPoolConfig's pool sizing and retry/timeout
// settings instead of the library's bare defaults.
func NewRedisClientFromURL(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, veritaserr.NewConfigError(fmt.Errorf("parse redis url: %w", err))
	}

	poolCfg := resilience.DefaultRedisPoolConfig()
	opts.PoolSize = poolCfg.PoolSize
	opts.MinIdleConns = poolCfg.MinIdleConns
	opts.MaxIdleConns = poolCfg.MaxIdleConns
	opts.ConnMaxIdleTime = poolCfg.ConnMaxIdleTime
	opts.ConnMaxLifetime = poolCfg.ConnMaxLifetime
	opts.MaxRetries = poolCfg.MaxRetries
	opts.MinRetryBackoff = poolCfg.MinRetryBackoff
	opts.MaxRetryBackoff = poolCfg.MaxRetryBackoff
	opts.DialTimeout = poolCfg.DialTimeout
	opts.ReadTimeout = poolCfg.ReadTimeout
	opts.WriteTimeout = poolCfg.WriteTimeout
	opts.PoolTimeout = poolCfg.PoolTimeout

	return redis.NewClient(opts), nil
}

func completionKey(claimID string) string {
	return fmt.Sprintf("veritas:completion:%s", claimID)
}

// MarkDone records that sourceID's fetch+score for claimID has finished.
func (b *RedisCompletionBuffer) MarkDone(ctx context.Context, claimID, sourceID string) error {
	if err := b.client.SAdd(ctx, completionKey(claimID), sourceID).Err(); err != nil {
		return veritaserr.NewPersistenceError(fmt.Errorf("mark done %s/%s: %w", claimID, sourceID, err))
	}
	return nil
}

// Done returns the set of source ids that have completed for claimID, in a
// deterministic (sorted) order so drain passes are reproducible.
func (b *RedisCompletionBuffer) Done(ctx context.Context, claimID string) ([]string, error) {
	members, err := b.client.SMembers(ctx, completionKey(claimID)).Result()
	if err != nil {
		return nil, veritaserr.NewPersistenceError(fmt.Errorf("list done for %s: %w", claimID, err))
	}
	sort.Strings(members)
	return members, nil
}

// IsComplete reports whether every id in expectedSourceIDs has a
// corresponding completion entry for claimID.
func (b *RedisCompletionBuffer) IsComplete(ctx context.Context, claimID string, expectedSourceIDs []string) (bool, error) {
	done, err := b.Done(ctx, claimID)
	if err != nil {
		return false, err
	}
	doneSet := make(map[string]bool, len(done))
	for _, d := range done {
		doneSet[d] = true
	}
	for _, id := range expectedSourceIDs {
		if !doneSet[id] {
			return false, nil
		}
	}
	return true, nil
}

// Clear removes claimID's completion set once its drain has been
// processed, bounding the buffer's memory footprint.
func (b *RedisCompletionBuffer) Clear(ctx context.Context, claimID string) error {
	if err := b.client.Del(ctx, completionKey(claimID)).Err(); err != nil {
		return veritaserr.NewPersistenceError(fmt.Errorf("clear %s: %w", claimID, err))
	}
	return nil
}
