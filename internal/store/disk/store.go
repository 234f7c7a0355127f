package disk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/utils"
)

// Store keeps one JSON file per enrichment key under dir.
type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *Store) Get(_ context.Context, key string) (*domain.Enriched, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry domain.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse cache file %s: %w", filepath.Base(p), err)
	}
	return &domain.Enriched{Key: key, Entry: &entry}, nil
}

// Put writes the entry through a temp file and rename.
func (s *Store) Put(_ context.Context, rec *domain.Enriched) error {
	p, err := s.path(rec.Key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec.Entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return utils.WriteFileAtomic(p, data, 0o644)
}

func (s *Store) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := utils.RemoveIfExists(p); err != nil {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Count is the number of cache files.
func (s *Store) Count(_ context.Context) (int64, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to list cache dir: %w", err)
	}
	return int64(len(files)), nil
}

// Flush removes every cache file.
func (s *Store) Flush(_ context.Context) error {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list cache dir: %w", err)
	}
	for _, f := range files {
		if err := utils.RemoveIfExists(f); err != nil {
			return fmt.Errorf("failed to remove %s: %w", filepath.Base(f), err)
		}
	}
	return nil
}
