package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultRecordTTL is used when the store is built without a TTL.
const DefaultRecordTTL = 2 * time.Hour

// Store keeps enrichment records in Redis. Records outlive the
// enrichment TTL, so a stale record is overwritten, not expired.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a Redis enrichment store. ttl is the Redis expiry.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultRecordTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the record for key, or (nil, nil) when absent
func (s *Store) Get(ctx context.Context, key string) (*domain.Enriched, error) {
	data, err := s.client.Get(ctx, EnrichedKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enrichment: %w", err)
	}

	var rec domain.Enriched
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enrichment: %w", err)
	}
	if rec.Entry == nil {
		return nil, nil
	}
	return &rec, nil
}

// Put stores rec and indexes its key
func (s *Store) Put(ctx context.Context, rec *domain.Enriched) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal enrichment: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, EnrichedKey(rec.Key), data, s.ttl)
	pipe.SAdd(ctx, AllEnrichedKey(), rec.Key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save enrichment: %w", err)
	}
	return nil
}

// Delete removes the record for key
func (s *Store) Delete(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, EnrichedKey(key))
	pipe.SRem(ctx, AllEnrichedKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete enrichment: %w", err)
	}
	return nil
}

// Count is the number of indexed keys. Expired records stay indexed
// until Prune runs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.client.SCard(ctx, AllEnrichedKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count enrichments: %w", err)
	}
	return n, nil
}
