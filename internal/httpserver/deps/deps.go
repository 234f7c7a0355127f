package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mcphub/internal/catalog"
	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/index"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
	"github.com/MrSnakeDoc/mcphub/internal/version"
)

// Catalog is the query surface the handlers serve.
type Catalog interface {
	Listing(ctx context.Context, locale domain.Locale) ([]*domain.Entry, error)
	Search(ctx context.Context, q catalog.SearchQuery) (domain.Page, error)
	GetByID(ctx context.Context, locale domain.Locale, id string) (*domain.Entry, error)
	Submit(ctx context.Context, sourceURL string) (*domain.Entry, error)
	Categories() []domain.CategoryInfo
	Locales() []domain.LocaleInfo
}

// CacheCounter reports how many enrichment records are stored.
type CacheCounter interface {
	Count(ctx context.Context) (int64, error)
}

// QueueStatus reports background localization backlog.
type QueueStatus interface {
	Pending() int
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Build          version.Info
	TimeNow        func() time.Time    // for testing, defaults to time.Now
	AllowedHosts   []string            // Host headers allowed to reach admin endpoints
	AllowedCIDRS   []string            // IPs allowed to reach admin endpoints
	AllowedOrigins []string            // CORS origins, "*" allows any
	TrustProxy     bool                // true if running behind a trusted reverse proxy
	Catalog        Catalog             // catalog query surface
	Listings       *index.ListingCache // per-locale listing cache, for infra
	CacheBackend   string              // disk | redis | bolt | memory
	EnrichCache    CacheCounter        // optional, nil when the backend cannot count
	RedisClient    *redis.Client       // nil unless the redis backend is used
	Localizer      QueueStatus         // optional
	LLMConfigured  bool
	Metrics        *metrics.Metrics
	ReloadTrigger  chan struct{} // Channel to trigger manual listing reload
	SubmitBurst    int
	SubmitPerMin   int
}

// Now returns d.TimeNow() or the wall clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
