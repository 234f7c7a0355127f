package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

// Refresher reloads every locale listing from disk.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// ListingReloader handles periodic reloading of the catalog listings
type ListingReloader struct {
	records       Refresher
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewListingReloader creates a new listing reloader. Sends on
// manualTrigger force an immediate reload.
func NewListingReloader(
	records Refresher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ListingReloader {
	return &ListingReloader{
		records:       records,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start warms every locale, then reloads on each tick or trigger.
func (lr *ListingReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := lr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	ticker := time.NewTicker(lr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := lr.Reload(ctx); err != nil {
					lr.logger.Error("failed to reload listings",
						logger.Error(err))
				}
			case <-lr.manualTrigger:
				lr.logger.Info("manual reload triggered")
				if err := lr.Reload(ctx); err != nil {
					lr.logger.Error("failed to reload listings",
						logger.Error(err))
				}
			case <-lr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (lr *ListingReloader) Stop() {
	close(lr.stopCh)
}

// Reload force-refreshes every locale.
func (lr *ListingReloader) Reload(ctx context.Context) error {
	start := time.Now()
	if err := lr.records.RefreshAll(ctx); err != nil {
		return fmt.Errorf("failed to refresh listings: %w", err)
	}
	lr.logger.Info("listings reloaded",
		logger.Duration("took", time.Since(start)))
	return nil
}
