package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

type recordingLocalizer struct {
	mu    sync.Mutex
	ids   []string
	block chan struct{}
}

func (r *recordingLocalizer) Localize(ctx context.Context, e *domain.Entry, _ bool) (int, error) {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	r.mu.Lock()
	r.ids = append(r.ids, e.ID)
	r.mu.Unlock()
	return len(domain.TranslatedLocales()), nil
}

func (r *recordingLocalizer) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

func TestLocalizer_DrainsOnStop(t *testing.T) {
	target := &recordingLocalizer{}
	l := NewLocalizer(target, 8, logger.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if !l.Enqueue(&domain.Entry{ID: id}) {
			t.Fatalf("Enqueue(%s) rejected", id)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	got := target.seen()
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("processed %v, want [a b c] in order", got)
	}
	if l.Enqueue(&domain.Entry{ID: "late"}) {
		t.Error("Enqueue after Stop should be rejected")
	}
}

func TestLocalizer_EnqueueNeverBlocks(t *testing.T) {
	target := &recordingLocalizer{block: make(chan struct{})}
	l := NewLocalizer(target, 1, logger.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The worker takes the first entry and blocks on it.
	l.Enqueue(&domain.Entry{ID: "first"})
	waitFor(t, func() bool { return l.Pending() == 0 })

	if !l.Enqueue(&domain.Entry{ID: "queued"}) {
		t.Fatal("second entry should fit the buffer")
	}

	done := make(chan bool)
	go func() { done <- l.Enqueue(&domain.Entry{ID: "dropped"}) }()
	select {
	case accepted := <-done:
		if accepted {
			t.Error("full queue should reject")
		}
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(target.block)
	if err := l.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := target.seen(); len(got) != 2 {
		t.Errorf("processed %v, want first and queued", got)
	}
}

func TestLocalizer_StopTimeout(t *testing.T) {
	target := &recordingLocalizer{block: make(chan struct{})}
	l := NewLocalizer(target, 4, logger.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	l.Enqueue(&domain.Entry{ID: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Stop(ctx); err == nil {
		t.Error("Stop should report the expired drain")
	}
	if got := target.seen(); len(got) != 0 {
		t.Errorf("cancelled job should not complete, got %v", got)
	}
}

func TestLocalizer_StartTwice(t *testing.T) {
	l := NewLocalizer(&recordingLocalizer{}, 0, logger.NewNop())
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := l.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}
	_ = l.Stop(context.Background())
}
