package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/catalog"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

// Deduplicator removes catalog entries sharing a source URL.
type Deduplicator interface {
	Dedupe(ctx context.Context) (catalog.DedupeReport, error)
}

// Deduper runs the catalog deduplication on an interval
type Deduper struct {
	target   Deduplicator
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewDeduper creates a deduper. A non-positive interval disables it.
func NewDeduper(target Deduplicator, log logger.Logger, interval time.Duration) *Deduper {
	return &Deduper{
		target:   target,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one pass immediately, then one per interval.
func (d *Deduper) Start(ctx context.Context) error {
	if d.interval <= 0 {
		d.logger.Info("periodic deduplication disabled")
		return nil
	}

	if err := d.Run(ctx); err != nil {
		d.logger.Warn("initial deduplication failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(d.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := d.Run(ctx); err != nil {
					d.logger.Error("deduplication failed",
						logger.Error(err))
				}
			case <-d.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the deduper
func (d *Deduper) Stop() {
	close(d.stopCh)
}

// Run performs one deduplication pass.
func (d *Deduper) Run(ctx context.Context) error {
	report, err := d.target.Dedupe(ctx)
	if len(report.Removed) > 0 {
		d.logger.Info("duplicate entries removed",
			logger.Int("removed", len(report.Removed)),
			logger.Strings("files", report.Removed),
			logger.Int("kept", len(report.Kept)))
	} else {
		d.logger.Debug("no duplicate entries")
	}
	return err
}
