package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

const DefaultLocalizeQueue = 64

// EntryLocalizer writes the translated copies of one entry.
type EntryLocalizer interface {
	Localize(ctx context.Context, e *domain.Entry, overwrite bool) (int, error)
}

// Localizer translates submitted entries in the background. One worker
// drains a bounded queue, so each locale directory has a single writer.
type Localizer struct {
	target EntryLocalizer
	logger logger.Logger
	queue  chan *domain.Entry
	done   chan struct{}

	mu      sync.RWMutex
	closed  bool
	started bool
	cancel  context.CancelFunc
}

// NewLocalizer creates a localizer buffering up to size entries.
func NewLocalizer(target EntryLocalizer, size int, log logger.Logger) *Localizer {
	if size <= 0 {
		size = DefaultLocalizeQueue
	}
	return &Localizer{
		target: target,
		logger: log,
		queue:  make(chan *domain.Entry, size),
		done:   make(chan struct{}),
	}
}

// Start launches the worker. Jobs outlive ctx so that shutdown drains
// them; Stop bounds the drain.
func (l *Localizer) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return errors.New("localizer already started")
	}
	l.started = true

	workCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l.cancel = cancel

	go func() {
		defer close(l.done)
		for e := range l.queue {
			l.process(workCtx, e)
		}
	}()
	return nil
}

// Enqueue hands e to the worker without blocking. It returns false when
// the queue is full or stopped.
func (l *Localizer) Enqueue(e *domain.Entry) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false
	}

	select {
	case l.queue <- e:
		return true
	default:
		return false
	}
}

// Pending is the number of queued entries.
func (l *Localizer) Pending() int {
	return len(l.queue)
}

// Stop closes the queue and waits for queued entries to be processed,
// or for ctx to end, in which case the job in flight is cancelled.
func (l *Localizer) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	started := l.started
	l.mu.Unlock()

	if !started {
		if n := len(l.queue); n > 0 {
			l.logger.Warn("localizer stopped before start, entries dropped",
				logger.Int("count", n))
		}
		return nil
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.cancel()
		l.logger.Warn("localizer drain interrupted",
			logger.Int("pending", len(l.queue)))
		return ctx.Err()
	}
}

func (l *Localizer) process(ctx context.Context, e *domain.Entry) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	n, err := l.target.Localize(ctx, e, false)
	if err != nil {
		l.logger.Error("failed to localize entry",
			logger.String("entry_id", e.ID),
			logger.Int("written", n),
			logger.Error(err))
		return
	}
	l.logger.Info("entry localized",
		logger.String("entry_id", e.ID),
		logger.Int("locales", n),
		logger.Duration("took", time.Since(start)))
}
