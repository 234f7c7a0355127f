package enrich

import (
	"context"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
)

// Store persists enrichment records. Get returns (nil, nil) on a miss
// and Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (*domain.Enriched, error)
	Put(ctx context.Context, rec *domain.Enriched) error
	Delete(ctx context.Context, key string) error
}

// Counter is implemented by stores that can report their size.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Flusher is implemented by stores that can drop every record.
type Flusher interface {
	Flush(ctx context.Context) error
}
