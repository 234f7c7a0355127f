package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mcphub/internal/catalog"
	"github.com/MrSnakeDoc/mcphub/internal/classify"
	"github.com/MrSnakeDoc/mcphub/internal/config"
	"github.com/MrSnakeDoc/mcphub/internal/content"
	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/enrich"
	"github.com/MrSnakeDoc/mcphub/internal/github"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/index"
	"github.com/MrSnakeDoc/mcphub/internal/llm"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
	"github.com/MrSnakeDoc/mcphub/internal/records"
	"github.com/MrSnakeDoc/mcphub/internal/redis"
	"github.com/MrSnakeDoc/mcphub/internal/scheduler"
	source "github.com/MrSnakeDoc/mcphub/internal/sources/catalog"
	boltstore "github.com/MrSnakeDoc/mcphub/internal/store/bolt"
	diskstore "github.com/MrSnakeDoc/mcphub/internal/store/disk"
	lrustore "github.com/MrSnakeDoc/mcphub/internal/store/lru"
	redisstore "github.com/MrSnakeDoc/mcphub/internal/store/redis"
	"github.com/MrSnakeDoc/mcphub/internal/translate"
	"github.com/MrSnakeDoc/mcphub/internal/version"
)

// App owns every long-lived component. The maintenance commands share it
// with the server so both see the same catalog and caches.
type App struct {
	cfg           *config.Config
	logger        logger.Logger
	metrics       *metrics.Metrics
	redisClient   *goredis.Client
	closers       []func() error
	cache         enrich.Store
	pruner        scheduler.Pruner
	listings      *index.ListingCache
	records       *records.Store
	service       *catalog.Service
	fetcher       *content.Fetcher
	localizer     *scheduler.Localizer
	reloadTrigger chan struct{}
	startedAt     time.Time
}

// lateLocalizer breaks the service <-> localizer construction cycle.
type lateLocalizer struct{ svc *catalog.Service }

func (l *lateLocalizer) Localize(ctx context.Context, e *domain.Entry, overwrite bool) (int, error) {
	return l.svc.Localize(ctx, e, overwrite)
}

// New loads the configuration and wires the catalog. The background
// localizer is started; Close drains it.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()
	return NewWithConfig(ctx, cfg, logger.NewWithOptions(logger.Options{
		Level:      cfg.LogLevel,
		Pretty:     cfg.PrettyLog,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}))
}

func NewWithConfig(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{
		cfg:           cfg,
		logger:        loggerClient,
		reloadTrigger: make(chan struct{}, 1),
		startedAt:     time.Now(),
	}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	var completer llm.Completer = llm.Disabled{}
	if cfg.LLMConfigured {
		completer = llm.NewClient(llm.Config{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
		loggerClient.Info("llm configured",
			logger.String("base_url", cfg.LLMBaseURL),
			logger.String("model", cfg.LLMModel))
	}

	gh := github.NewClient(github.Options{
		APIURL:    cfg.GitHubAPIURL,
		Token:     cfg.GitHubToken,
		Timeout:   cfg.GitHubTimeout,
		CacheTTL:  cfg.GitHubCacheTTL,
		UserAgent: cfg.DocumentUserAgent,
	}, loggerClient, a.metrics)

	a.fetcher = content.NewFetcher(content.FetcherOptions{
		RawURL:    cfg.GitHubRawURL,
		MaxBytes:  cfg.MaxDocumentBytes,
		Timeout:   cfg.GitHubTimeout,
		UserAgent: cfg.DocumentUserAgent,
	}, loggerClient)
	pipeline := content.NewPipeline(completer, cfg.LLMCharLimit, loggerClient, a.metrics)
	translator := translate.New(completer, loggerClient, a.metrics)

	rules := classify.DefaultKeywordRules()
	if cfg.KeywordsFile != "" {
		loaded, err := classify.LoadKeywordRules(cfg.KeywordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load keyword rules: %w", err)
		}
		rules = loaded
		loggerClient.Info("keyword rules loaded", logger.String("file", cfg.KeywordsFile))
	}
	classifier := classify.New(completer, rules, loggerClient, a.metrics)

	if err := a.openCache(ctx); err != nil {
		_ = a.closeAll()
		return nil, err
	}

	enricher := enrich.New(a.cache, gh, a.fetcher, pipeline, enrich.Options{TTL: cfg.EnrichTTL, Timeout: cfg.RequestTimeout}, loggerClient, a.metrics)

	loader := source.NewLoader(cfg.DataDir, loggerClient)
	writer := source.NewWriter(loader, loggerClient)
	a.listings = index.NewListingCache()
	a.records = records.NewStore(loader, a.listings, records.Options{TTL: cfg.ListingTTL}, loggerClient)

	late := &lateLocalizer{}
	a.localizer = scheduler.NewLocalizer(late, cfg.LocalizeQueue, loggerClient)
	a.service = catalog.NewService(catalog.Deps{
		Records:    a.records,
		Files:      loader,
		Writer:     writer,
		Enricher:   enricher,
		Documents:  a.fetcher,
		Metadata:   gh,
		Extractor:  pipeline,
		Classifier: classifier,
		Localizer:  translator,
		Queue:      a.localizer,
		Logger:     loggerClient,
	})
	late.svc = a.service

	if err := a.localizer.Start(ctx); err != nil {
		_ = a.closeAll()
		return nil, fmt.Errorf("failed to start localizer: %w", err)
	}
	return a, nil
}

// openCache builds the enrichment store named by MCPHUB_CACHE_BACKEND,
// fronted by the in-process LRU.
func (a *App) openCache(ctx context.Context) error {
	var backend enrich.Store

	switch a.cfg.CacheBackend {
	case config.CacheBackendMemory:
		backend = enrich.NewMemoryStore()

	case config.CacheBackendBolt:
		s, err := boltstore.NewStore(a.cfg.BoltPath)
		if err != nil {
			return fmt.Errorf("failed to open bolt cache: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		backend = s

	case config.CacheBackendRedis:
		client, err := redis.New(ctx, redis.OptionsFromConfig(a.cfg), a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		a.closers = append(a.closers, client.Close)
		s := redisstore.NewStore(client, a.cfg.EnrichTTL)
		a.pruner = s
		backend = s

	default:
		s, err := diskstore.NewStore(a.cfg.CacheDir)
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		backend = s
	}

	cache, err := lrustore.Wrap(backend, a.cfg.CacheL1Size)
	if err != nil {
		return fmt.Errorf("failed to build cache tier: %w", err)
	}
	a.cache = cache
	a.logger.Info("enrichment cache ready",
		logger.String("backend", a.cfg.CacheBackend),
		logger.Int("l1_size", a.cfg.CacheL1Size))
	return nil
}

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Logger() logger.Logger { return a.logger }

func (a *App) Service() *catalog.Service { return a.service }

func (a *App) Fetcher() *content.Fetcher { return a.fetcher }

// Cache is the LRU-fronted enrichment store.
func (a *App) Cache() enrich.Store { return a.cache }

// Pruner is nil unless the cache backend keeps a key index.
func (a *App) Pruner() scheduler.Pruner { return a.pruner }

// Run serves HTTP with the schedulers until SIGINT/SIGTERM, then shuts
// down gracefully.
func (a *App) Run() error {
	build := version.Get()
	a.logger.Infof("🚀 Starting mcphub %s on %s", build.Version, a.cfg.ListenPort)
	a.logger.Info(build.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reloader := scheduler.NewListingReloader(a.records, a.logger, a.cfg.ReloadInterval, a.reloadTrigger)
	if err := reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start listing reloader: %w", err)
	}
	a.logger.Info("listing reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	deduper := scheduler.NewDeduper(a.service, a.logger, a.cfg.DedupeInterval)
	if err := deduper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start deduper: %w", err)
	}

	var gc *scheduler.GarbageCollector
	if a.pruner != nil {
		gc = scheduler.NewGarbageCollector(a.pruner, a.logger, a.cfg.CachePruneInterval, a.metrics)
		if err := gc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start garbage collector: %w", err)
		}
		a.logger.Info("garbage collector started",
			logger.Duration("interval", a.cfg.CachePruneInterval))
	}

	var counter deps.CacheCounter
	if c, ok := a.cache.(enrich.Counter); ok {
		counter = c
	}

	d := deps.Deps{
		Logger:         a.logger,
		StartTime:      a.startedAt,
		Build:          build,
		TimeNow:        time.Now,
		AllowedHosts:   a.cfg.AllowedHosts,
		AllowedCIDRS:   a.cfg.AllowedCIDRS,
		AllowedOrigins: a.cfg.AllowedOrigins,
		TrustProxy:     a.cfg.TrustProxy,
		Catalog:        a.service,
		Listings:       a.listings,
		CacheBackend:   a.cfg.CacheBackend,
		EnrichCache:    counter,
		RedisClient:    a.redisClient,
		Localizer:      a.localizer,
		LLMConfigured:  a.cfg.LLMConfigured,
		Metrics:        a.metrics,
		ReloadTrigger:  a.reloadTrigger,
		SubmitBurst:    a.cfg.SubmitBurst,
		SubmitPerMin:   a.cfg.SubmitPerMin,
	}
	server := httpserver.New(a.cfg, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	reloader.Stop()
	deduper.Stop()
	if gc != nil {
		gc.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to stop server: %w", err))
	}
	if err := a.close(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}

	if runErr == nil {
		a.logger.Info("✅ mcphub stopped cleanly")
	}
	return runErr
}

// Close drains pending localizations and releases the cache backend.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.drainTimeout())
	defer cancel()
	return a.close(ctx)
}

// drainTimeout gives queued translations time to finish in one-shot
// commands, where nothing else bounds the exit.
func (a *App) drainTimeout() time.Duration {
	return max(a.cfg.ShutdownTimeout, 2*a.cfg.LLMTimeout)
}

func (a *App) close(ctx context.Context) error {
	var errs []error
	if a.localizer != nil {
		if err := a.localizer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain localizer: %w", err))
		}
	}
	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		a.logger.Warn("failed to close cache backend", logger.Error(errors.Join(errs...)))
		return fmt.Errorf("failed to close cache backend: %w", errors.Join(errs...))
	}
	return nil
}
