package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "nested", "enrich.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, "1_en")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Put(ctx, &domain.Enriched{Key: "1_en", Entry: &domain.Entry{ID: "1", Name: "Memory"}}))
	require.NoError(t, s.Put(ctx, &domain.Enriched{Key: "1_de", Entry: &domain.Entry{ID: "1", Name: "Memory"}}))

	got, err = s.Get(ctx, "1_en")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Memory", got.Entry.Name)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.Delete(ctx, "1_en"))
	require.NoError(t, s.Delete(ctx, "absent"))
	got, err = s.Get(ctx, "1_en")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Flush(ctx))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enrich.db")
	ctx := context.Background()

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, &domain.Enriched{Key: "7_ja", Entry: &domain.Entry{ID: "7"}}))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, "7_ja")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "7", got.Entry.ID)
}
