package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/catalog"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/metrics"
)

type countingPruner struct {
	calls   atomic.Int32
	removed int
	err     error
}

func (p *countingPruner) Prune(context.Context) (int, error) {
	p.calls.Add(1)
	return p.removed, p.err
}

func TestGarbageCollector_Collect(t *testing.T) {
	log := logger.New("error", false)
	p := &countingPruner{removed: 3}

	gc := NewGarbageCollector(p, log, time.Hour, nil)
	if err := gc.Collect(context.Background()); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if p.calls.Load() != 1 {
		t.Errorf("Prune called %d times, want 1", p.calls.Load())
	}

	p.err = errors.New("redis down")
	if err := gc.Collect(context.Background()); err == nil {
		t.Error("Collect should surface prune errors")
	}
}

func TestGarbageCollector_DefaultInterval(t *testing.T) {
	gc := NewGarbageCollector(&countingPruner{}, logger.NewNop(), 0, nil)
	if gc.interval != DefaultGCInterval {
		t.Errorf("interval = %v, want %v", gc.interval, DefaultGCInterval)
	}
}

func TestGarbageCollector_StartRunsImmediately(t *testing.T) {
	p := &countingPruner{}
	gc := NewGarbageCollector(p, logger.NewNop(), time.Hour, metrics.New())

	if err := gc.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	gc.Stop()
	gc.Stop()

	if p.calls.Load() != 1 {
		t.Errorf("Start should prune once immediately, got %d", p.calls.Load())
	}
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshAll(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestListingReloader_ManualTrigger(t *testing.T) {
	r := &countingRefresher{}
	trigger := make(chan struct{}, 1)
	lr := NewListingReloader(r, logger.NewNop(), time.Hour, trigger)

	if err := lr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer lr.Stop()

	if r.calls.Load() != 1 {
		t.Fatalf("Start should warm listings once, got %d", r.calls.Load())
	}

	trigger <- struct{}{}
	waitFor(t, func() bool { return r.calls.Load() == 2 })
}

func TestListingReloader_InitialFailure(t *testing.T) {
	r := &countingRefresher{err: errors.New("unreadable")}
	lr := NewListingReloader(r, logger.NewNop(), time.Hour, make(chan struct{}, 1))

	if err := lr.Start(context.Background()); err == nil {
		t.Error("Start should fail when the initial reload fails")
	}
}

type fakeDeduplicator struct {
	calls  atomic.Int32
	report catalog.DedupeReport
}

func (f *fakeDeduplicator) Dedupe(context.Context) (catalog.DedupeReport, error) {
	f.calls.Add(1)
	return f.report, nil
}

func TestDeduper(t *testing.T) {
	tests := []struct {
		name      string
		interval  time.Duration
		wantCalls int32
	}{
		{"disabled", 0, 0},
		{"enabled", time.Hour, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeDeduplicator{report: catalog.DedupeReport{Kept: []string{"a.json"}, Removed: []string{"b.json"}}}
			d := NewDeduper(f, logger.NewNop(), tt.interval)
			if err := d.Start(context.Background()); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			defer d.Stop()

			if got := f.calls.Load(); got != tt.wantCalls {
				t.Errorf("Dedupe called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}
