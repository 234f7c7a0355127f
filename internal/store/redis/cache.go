package redis

import (
	"context"
	"fmt"
)

// Prune drops index entries whose record has expired. It returns how
// many were removed.
func (s *Store) Prune(ctx context.Context) (int, error) {
	keys, err := s.client.SMembers(ctx, AllEnrichedKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list enrichment keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		n, err := s.client.Exists(ctx, EnrichedKey(key)).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to check enrichment %s: %w", key, err)
		}
		if n > 0 {
			continue
		}
		if err := s.client.SRem(ctx, AllEnrichedKey(), key).Err(); err != nil {
			return removed, fmt.Errorf("failed to unindex enrichment %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}

// Flush removes every enrichment record
func (s *Store) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixEnriched+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete enrichment key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush enrichments: %w", err)
	}
	if err := s.client.Del(ctx, AllEnrichedKey()).Err(); err != nil {
		return fmt.Errorf("failed to drop enrichment index: %w", err)
	}
	return nil
}
