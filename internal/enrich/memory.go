package enrich

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
)

// MemoryStore keeps records in a process-local map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Enriched
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*domain.Enriched)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*domain.Enriched, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return &domain.Enriched{Key: rec.Key, Entry: rec.Entry.Clone()}, nil
}

func (s *MemoryStore) Put(_ context.Context, rec *domain.Enriched) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[rec.Key] = &domain.Enriched{Key: rec.Key, Entry: rec.Entry.Clone()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// Len is the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) Count(context.Context) (int64, error) {
	return int64(s.Len()), nil
}

func (s *MemoryStore) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]*domain.Enriched)
	return nil
}
