package catalog

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	source "github.com/MrSnakeDoc/mcphub/internal/sources/catalog"
)

// Records is the cached view of each locale's listing.
type Records interface {
	GetOrRefresh(ctx context.Context, locale domain.Locale) ([]*domain.Entry, error)
	ForceRefresh(ctx context.Context, locale domain.Locale) ([]*domain.Entry, error)
	Lookup(ctx context.Context, locale domain.Locale, id string) (*domain.Entry, bool, error)
}

// Files reads entry files together with their file metadata.
type Files interface {
	Files(locale domain.Locale) ([]source.File, error)
}

// Writer persists entry files.
type Writer interface {
	Save(locale domain.Locale, e *domain.Entry) (string, error)
	SaveAs(locale domain.Locale, name string, e *domain.Entry) (string, error)
	DeleteFile(name string) error
}

type Enricher interface {
	GetEnriched(ctx context.Context, entry *domain.Entry, locale domain.Locale) *domain.Entry
	Invalidate(ctx context.Context, id string)
}

type DocumentFetcher interface {
	FetchDocument(ctx context.Context, sourceURL string) string
}

type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, sourceURL string) *domain.RepoMetadata
}

type Extractor interface {
	Process(ctx context.Context, content string, locale domain.Locale) domain.ExtractedInfo
}

type Classifier interface {
	Classify(ctx context.Context, name, description string) domain.Category
}

type Localizer interface {
	LocalizeEntry(ctx context.Context, base *domain.Entry, locale domain.Locale) *domain.Entry
}

// Queue accepts entries for background localization. Enqueue reports
// whether the entry was accepted.
type Queue interface {
	Enqueue(e *domain.Entry) bool
}

// Deps wires a Service. Queue may be nil, in which case submissions are
// only stored in the default locale.
type Deps struct {
	Records    Records
	Files      Files
	Writer     Writer
	Enricher   Enricher
	Documents  DocumentFetcher
	Metadata   MetadataFetcher
	Extractor  Extractor
	Classifier Classifier
	Localizer  Localizer
	Queue      Queue
	Now        func() time.Time
	Logger     logger.Logger
}

// Service is the catalog query and maintenance surface.
type Service struct {
	records    Records
	files      Files
	writer     Writer
	enricher   Enricher
	docs       DocumentFetcher
	metadata   MetadataFetcher
	extractor  Extractor
	classifier Classifier
	localizer  Localizer
	queue      Queue
	now        func() time.Time
	logger     logger.Logger
	submits    *keyLock
}

func NewService(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	return &Service{
		records:    d.Records,
		files:      d.Files,
		writer:     d.Writer,
		enricher:   d.Enricher,
		docs:       d.Documents,
		metadata:   d.Metadata,
		extractor:  d.Extractor,
		classifier: d.Classifier,
		localizer:  d.Localizer,
		queue:      d.Queue,
		now:        d.Now,
		logger:     d.Logger,
		submits:    newKeyLock(),
	}
}

// SearchQuery are the listing inputs. Zero values disable each filter.
type SearchQuery struct {
	Locale       domain.Locale
	Category     domain.Category
	Text         string
	Page         int
	PageSize     int
	FeaturedOnly bool
}

// Listing returns locale's full entry set.
func (s *Service) Listing(ctx context.Context, locale domain.Locale) ([]*domain.Entry, error) {
	return s.records.GetOrRefresh(ctx, locale)
}

// Search filters, sorts featured first and paginates locale's listing.
func (s *Service) Search(ctx context.Context, q SearchQuery) (domain.Page, error) {
	locale := q.Locale
	if locale == "" {
		locale = domain.DefaultLocale
	}
	entries, err := s.records.GetOrRefresh(ctx, locale)
	if err != nil {
		return domain.Page{}, err
	}

	f := domain.Filter{
		Category:     q.Category,
		Text:         q.Text,
		FeaturedOnly: q.FeaturedOnly,
	}
	return domain.Query(entries, f, q.Page, q.PageSize), nil
}

// GetByID returns the enriched entry, or domain.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, locale domain.Locale, id string) (*domain.Entry, error) {
	if locale == "" {
		locale = domain.DefaultLocale
	}
	e, ok, err := s.records.Lookup(ctx, locale, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.enricher.GetEnriched(ctx, e, locale), nil
}

func (s *Service) Categories() []domain.CategoryInfo {
	return domain.Categories()
}

func (s *Service) Locales() []domain.LocaleInfo {
	return domain.Locales()
}
