package records

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/index"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

const DefaultTTL = time.Hour

// Loader reads a locale's full entry set from the backing files.
type Loader interface {
	LoadAll(locale domain.Locale) ([]*domain.Entry, error)
}

// Options tune a Store. Zero values pick the defaults.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

// Store serves locale listings from an in-memory cache backed by
// Loader. Concurrent TTL refreshes of one locale share a single load;
// a forced refresh always starts its own.
type Store struct {
	loader Loader
	cache  *index.ListingCache
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group
	logger logger.Logger

	mu        sync.Mutex
	seq       uint64
	committed map[domain.Locale]uint64
}

func NewStore(loader Loader, cache *index.ListingCache, opts Options, log logger.Logger) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if cache == nil {
		cache = index.NewListingCache()
	}
	return &Store{
		loader: loader,
		cache:  cache,
		ttl:    opts.TTL,
		now:    opts.Now,
		logger: log,

		committed: make(map[domain.Locale]uint64),
	}
}

// GetOrRefresh returns locale's cached listing while it is younger than
// the TTL, and reloads it otherwise. An empty listing is always
// reloaded.
func (s *Store) GetOrRefresh(ctx context.Context, locale domain.Locale) ([]*domain.Entry, error) {
	if entries, loadedAt, ok := s.cache.Get(locale); ok && len(entries) > 0 && s.now().Sub(loadedAt) < s.ttl {
		return entries, nil
	}
	return s.refresh(ctx, locale, false)
}

// ForceRefresh reloads locale regardless of age. It never joins a load
// that was already running, so writes made before the call are seen.
func (s *Store) ForceRefresh(ctx context.Context, locale domain.Locale) ([]*domain.Entry, error) {
	return s.refresh(ctx, locale, true)
}

// RefreshAll force-refreshes every locale and returns the first error.
func (s *Store) RefreshAll(ctx context.Context) error {
	var first error
	for _, l := range domain.AllLocales() {
		if _, err := s.ForceRefresh(ctx, l); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Lookup finds id in locale's current listing, loading it if needed.
func (s *Store) Lookup(ctx context.Context, locale domain.Locale, id string) (*domain.Entry, bool, error) {
	if _, err := s.GetOrRefresh(ctx, locale); err != nil {
		return nil, false, err
	}
	e, ok := s.cache.Lookup(locale, id)
	return e, ok, nil
}

func (s *Store) refresh(ctx context.Context, locale domain.Locale, force bool) ([]*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := string(locale)
	if force {
		s.group.Forget(key)
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.load(locale)
	})
	if err != nil {
		// A stale listing beats none.
		if entries, _, ok := s.cache.Get(locale); ok {
			s.logger.Warn("listing reload failed, serving stale copy",
				logger.String("locale", string(locale)),
				logger.Error(err))
			return entries, nil
		}
		return nil, fmt.Errorf("failed to load %s listing: %w", locale, err)
	}
	return v.([]*domain.Entry), nil
}

// load reads locale and installs it unless a load that started later
// has already been committed.
func (s *Store) load(locale domain.Locale) ([]*domain.Entry, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	start := s.now()
	entries, err := s.loader.LoadAll(locale)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.committed[locale] {
		if current, _, ok := s.cache.Get(locale); ok {
			return current, nil
		}
	}
	s.committed[locale] = seq
	s.cache.Update(locale, entries, start)
	s.logger.Debug("listing loaded",
		logger.String("locale", string(locale)),
		logger.Int("entries", len(entries)))
	return entries, nil
}
