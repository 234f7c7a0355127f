package enrich

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/github"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is how long an enrichment stays fresh.
	DefaultTTL = time.Hour
	// DefaultTimeout bounds one shared computation.
	DefaultTimeout = 90 * time.Second
)

type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, sourceURL string) *domain.RepoMetadata
}

type DocumentFetcher interface {
	FetchDocument(ctx context.Context, sourceURL string) string
}

type Extractor interface {
	Process(ctx context.Context, content string, locale domain.Locale) domain.ExtractedInfo
}

type Options struct {
	TTL     time.Duration
	Timeout time.Duration
	Now     func() time.Time
}

// Enricher merges repository metadata and extracted README fields onto
// catalog entries, caching the result per (entry, locale).
type Enricher struct {
	store     Store
	metadata  MetadataFetcher
	documents DocumentFetcher
	extractor Extractor
	ttl       time.Duration
	timeout   time.Duration
	now       func() time.Time
	group     singleflight.Group
	logger    logger.Logger
	metrics   *metrics.Metrics
}

func New(store Store, md MetadataFetcher, docs DocumentFetcher, ex Extractor, opts Options, log logger.Logger, m *metrics.Metrics) *Enricher {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Enricher{
		store:     store,
		metadata:  md,
		documents: docs,
		extractor: ex,
		ttl:       opts.TTL,
		timeout:   opts.Timeout,
		now:       opts.Now,
		logger:    log,
		metrics:   m,
	}
}

// GetEnriched returns the enriched copy of entry for locale. It never
// fails: upstream errors leave the matching fields unset.
// Concurrent calls for the same key share one computation, which is
// detached from the calling request and bounded by the enricher's own
// timeout.
func (e *Enricher) GetEnriched(ctx context.Context, entry *domain.Entry, locale domain.Locale) *domain.Entry {
	key := domain.EnrichmentKey(entry.ID, locale)

	v, _, _ := e.group.Do(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		return e.load(lctx, entry, locale, key), nil
	})

	out := v.(*domain.Entry).Clone()
	out.ID = entry.ID
	return out
}

func (e *Enricher) load(ctx context.Context, entry *domain.Entry, locale domain.Locale, key string) *domain.Entry {
	now := e.now()

	cached, err := e.store.Get(ctx, key)
	switch {
	case err != nil:
		e.metrics.EnrichCache("error")
		e.logger.Warn("enrichment cache read failed",
			logger.String("key", key),
			logger.Error(err))
	case cached == nil:
		e.metrics.EnrichCache("miss")
	case cached.Fresh(now, e.ttl):
		e.metrics.EnrichCache("hit")
		return cached.Entry
	default:
		e.metrics.EnrichCache("stale")
	}

	merged := e.compute(ctx, entry, locale, now)

	// Fetches cut short by the deadline look like missing data.
	if err := ctx.Err(); err != nil {
		e.logger.Warn("enrichment timed out, result not cached",
			logger.String("key", key),
			logger.Error(err))
		return merged
	}
	if err := e.store.Put(ctx, &domain.Enriched{Key: key, Entry: merged}); err != nil {
		e.logger.Warn("enrichment cache write failed",
			logger.String("key", key),
			logger.Error(err))
	}
	return merged
}

func (e *Enricher) compute(ctx context.Context, entry *domain.Entry, locale domain.Locale, now time.Time) *domain.Entry {
	var (
		md  *domain.RepoMetadata
		doc string
	)

	g, gctx := errgroup.WithContext(ctx)
	if github.IsHostingURL(entry.SourceURL) {
		g.Go(func() error {
			md = e.metadata.FetchMetadata(gctx, entry.SourceURL)
			return nil
		})
	}
	g.Go(func() error {
		doc = e.documents.FetchDocument(gctx, entry.SourceURL)
		return nil
	})
	_ = g.Wait()

	merged := entry.Clone()
	merged.ApplyMetadata(md)

	if doc != "" {
		merged.ApplyExtraction(e.extractor.Process(ctx, doc, locale))
		merged.Touch(now)
	} else {
		e.logger.Debug("no document for entry, caching metadata only",
			logger.String("entry_id", entry.ID),
			logger.String("source_url", entry.SourceURL))
	}

	merged.MarkEnriched(now)
	return merged
}

// Invalidate drops every locale's record for id so the next read
// recomputes from the current catalog file.
func (e *Enricher) Invalidate(ctx context.Context, id string) {
	for _, l := range domain.AllLocales() {
		key := domain.EnrichmentKey(id, l)
		if err := e.store.Delete(ctx, key); err != nil {
			e.logger.Warn("enrichment cache delete failed",
				logger.String("key", key),
				logger.Error(err))
		}
	}
}
