package lru

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/enrich"
	hlru "github.com/hashicorp/golang-lru/v2"
)

// Tiered keeps recently used records in process in front of a slower
// backend. Records handed out are copies.
type Tiered struct {
	l1      *hlru.Cache[string, *domain.Enriched]
	backend enrich.Store
}

// Wrap returns backend unchanged when size <= 0.
func Wrap(backend enrich.Store, size int) (enrich.Store, error) {
	if size <= 0 {
		return backend, nil
	}
	return New(backend, size)
}

func New(backend enrich.Store, size int) (*Tiered, error) {
	l1, err := hlru.New[string, *domain.Enriched](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru: %w", err)
	}
	return &Tiered{l1: l1, backend: backend}, nil
}

func (t *Tiered) Get(ctx context.Context, key string) (*domain.Enriched, error) {
	if rec, ok := t.l1.Get(key); ok {
		return copyRecord(rec), nil
	}

	rec, err := t.backend.Get(ctx, key)
	if err != nil || rec == nil {
		return rec, err
	}
	t.l1.Add(key, copyRecord(rec))
	return rec, nil
}

// Put writes through to the backend. The L1 copy is kept even when the
// backend write fails.
func (t *Tiered) Put(ctx context.Context, rec *domain.Enriched) error {
	t.l1.Add(rec.Key, copyRecord(rec))
	return t.backend.Put(ctx, rec)
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	t.l1.Remove(key)
	return t.backend.Delete(ctx, key)
}

// Count reports the backend size, or the L1 size when the backend
// cannot count.
func (t *Tiered) Count(ctx context.Context) (int64, error) {
	if c, ok := t.backend.(enrich.Counter); ok {
		return c.Count(ctx)
	}
	return int64(t.l1.Len()), nil
}

func (t *Tiered) Flush(ctx context.Context) error {
	t.l1.Purge()
	if f, ok := t.backend.(enrich.Flusher); ok {
		return f.Flush(ctx)
	}
	return nil
}

// Resident is the number of records held in process.
func (t *Tiered) Resident() int { return t.l1.Len() }

func copyRecord(rec *domain.Enriched) *domain.Enriched {
	return &domain.Enriched{Key: rec.Key, Entry: rec.Entry.Clone()}
}
