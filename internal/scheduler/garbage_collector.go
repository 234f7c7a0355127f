package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
)

// DefaultGCInterval is how often the enrichment key index is pruned.
const DefaultGCInterval = 6 * time.Hour

// Pruner drops index entries whose enrichment record has expired.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// GarbageCollector keeps the redis key index of the enrichment cache in
// step with records that Redis expired on its own. Without it Count
// overreports and Flush walks dead keys.
type GarbageCollector struct {
	pruner   Pruner
	logger   logger.Logger
	metrics  *metrics.Metrics
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewGarbageCollector(pruner Pruner, log logger.Logger, interval time.Duration, m *metrics.Metrics) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &GarbageCollector{
		pruner:   pruner,
		logger:   log,
		metrics:  m,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start prunes once synchronously, then on every tick until Stop or ctx
// ends. A failed first pass is logged, not returned.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial cache prune failed", logger.Error(err))
	}

	go func() {
		ticker := time.NewTicker(gc.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("cache prune failed", logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop is safe to call more than once.
func (gc *GarbageCollector) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
}

// Collect runs one prune pass.
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	start := time.Now()
	removed, err := gc.pruner.Prune(ctx)
	gc.metrics.CachePruned(removed, err)
	if err != nil {
		return err
	}

	if removed == 0 {
		gc.logger.Debug("cache prune found nothing to drop")
		return nil
	}
	gc.logger.Info("cache prune completed",
		logger.Int("keys_pruned", removed),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}
