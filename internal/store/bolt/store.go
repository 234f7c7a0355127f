package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	bbolt "go.etcd.io/bbolt"
)

var enrichedBucket = []byte("enriched")

// Store keeps enrichment records in a single bbolt file.
type Store struct {
	db *bbolt.DB
}

func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(enrichedBucket)
		return createErr
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, key string) (*domain.Enriched, error) {
	var rec *domain.Enriched
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(enrichedBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		var r domain.Enriched
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		if r.Entry != nil {
			rec = &r
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get enrichment: %w", err)
	}
	return rec, nil
}

func (s *Store) Put(_ context.Context, rec *domain.Enriched) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal enrichment: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(enrichedBucket).Put([]byte(rec.Key), data)
	})
}

func (s *Store) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(enrichedBucket).Delete([]byte(key))
	})
}

func (s *Store) Count(_ context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = int64(tx.Bucket(enrichedBucket).Stats().KeyN)
		return nil
	})
	return n, err
}

// Flush drops and recreates the bucket.
func (s *Store) Flush(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(enrichedBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(enrichedBucket)
		return err
	})
}
