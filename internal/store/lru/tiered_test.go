package lru

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/enrich"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*enrich.MemoryStore
	gets int
}

func (c *countingStore) Get(ctx context.Context, key string) (*domain.Enriched, error) {
	c.gets++
	return c.MemoryStore.Get(ctx, key)
}

type brokenStore struct{ enrich.Store }

func (brokenStore) Put(context.Context, *domain.Enriched) error { return errors.New("down") }

func rec(key, name string) *domain.Enriched {
	return &domain.Enriched{Key: key, Entry: &domain.Entry{ID: key, Name: name}}
}

func TestTieredReadsThroughOnce(t *testing.T) {
	backend := &countingStore{MemoryStore: enrich.NewMemoryStore()}
	ctx := context.Background()
	require.NoError(t, backend.Put(ctx, rec("1_en", "a")))

	tiered, err := New(backend, 8)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := tiered.Get(ctx, "1_en")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "a", got.Entry.Name)
	}
	assert.Equal(t, 1, backend.gets)
	assert.Equal(t, 1, tiered.Resident())
}

func TestTieredMissIsNotCached(t *testing.T) {
	backend := &countingStore{MemoryStore: enrich.NewMemoryStore()}
	tiered, err := New(backend, 8)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := tiered.Get(context.Background(), "absent")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 2, backend.gets)
}

func TestTieredEvicts(t *testing.T) {
	backend := &countingStore{MemoryStore: enrich.NewMemoryStore()}
	tiered, err := New(backend, 2)
	require.NoError(t, err)
	ctx := context.Background()

	for _, k := range []string{"1_en", "2_en", "3_en"} {
		require.NoError(t, tiered.Put(ctx, rec(k, k)))
	}
	assert.Equal(t, 2, tiered.Resident())

	got, err := tiered.Get(ctx, "1_en")
	require.NoError(t, err)
	require.NotNil(t, got, "evicted record must come from the backend")
	assert.Equal(t, 1, backend.gets)
}

func TestTieredCopies(t *testing.T) {
	tiered, err := New(enrich.NewMemoryStore(), 4)
	require.NoError(t, err)
	ctx := context.Background()

	r := rec("1_en", "a")
	require.NoError(t, tiered.Put(ctx, r))
	r.Entry.Name = "mutated"

	got, err := tiered.Get(ctx, "1_en")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Entry.Name)
}

func TestTieredDeleteCountFlush(t *testing.T) {
	tiered, err := New(enrich.NewMemoryStore(), 4)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, tiered.Put(ctx, rec("1_en", "a")))
	require.NoError(t, tiered.Put(ctx, rec("2_en", "b")))
	require.NoError(t, tiered.Delete(ctx, "1_en"))

	got, err := tiered.Get(ctx, "1_en")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := tiered.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, tiered.Flush(ctx))
	assert.Zero(t, tiered.Resident())
	n, err = tiered.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTieredKeepsL1OnBackendFailure(t *testing.T) {
	tiered, err := New(brokenStore{Store: enrich.NewMemoryStore()}, 4)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, tiered.Put(ctx, rec("1_en", "a")))
	got, err := tiered.Get(ctx, "1_en")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestWrapDisabled(t *testing.T) {
	backend := enrich.NewMemoryStore()
	s, err := Wrap(backend, 0)
	require.NoError(t, err)
	assert.Same(t, backend, s)
}
