package redis

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, 2*time.Hour), mr
}

func record(key, name string) *domain.Enriched {
	ms := time.Now().UnixMilli()
	return &domain.Enriched{Key: key, Entry: &domain.Entry{ID: "1", Name: name, LastEnrichedAt: &ms}}
}

func TestStorePutGet(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, "1_en")
	require.NoError(t, err)
	assert.Nil(t, got, "miss must be (nil, nil)")

	require.NoError(t, s.Put(ctx, record("1_en", "Memory")))

	got, err = s.Get(ctx, "1_en")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Memory", got.Entry.Name)
	assert.Equal(t, "1_en", got.Key)

	assert.True(t, mr.Exists("mcphub:enrich:1_en"))
	assert.Equal(t, 2*time.Hour, mr.TTL("mcphub:enrich:1_en"))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStoreCorruptValue(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set(EnrichedKey("1_en"), "{not json"))

	_, err := s.Get(context.Background(), "1_en")
	assert.Error(t, err)
}

func TestStoreDelete(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, record("1_en", "Memory")))
	require.NoError(t, s.Delete(ctx, "1_en"))
	require.NoError(t, s.Delete(ctx, "absent"))

	assert.False(t, mr.Exists(EnrichedKey("1_en")))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorePruneAndFlush(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, record("1_en", "a")))
	require.NoError(t, s.Put(ctx, record("2_en", "b")))

	mr.FastForward(3 * time.Hour)
	require.NoError(t, s.Put(ctx, record("3_en", "c")))

	removed, err := s.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.Flush(ctx))
	assert.False(t, mr.Exists(EnrichedKey("3_en")))
	assert.False(t, mr.Exists(AllEnrichedKey()))
}

func TestExtractEnrichmentKey(t *testing.T) {
	key, err := ExtractEnrichmentKey(EnrichedKey("42_ja"))
	require.NoError(t, err)
	assert.Equal(t, "42_ja", key)

	_, err = ExtractEnrichmentKey("other:prefix:x")
	assert.Error(t, err)
	_, err = ExtractEnrichmentKey(KeyPrefixEnriched)
	assert.Error(t, err)
}
