package records

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/index"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls map[domain.Locale]int
	sets  map[domain.Locale][]*domain.Entry
	err   error
	delay time.Duration
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		calls: make(map[domain.Locale]int),
		sets: map[domain.Locale][]*domain.Entry{
			domain.LocaleEN: {{ID: "a", Name: "alpha"}},
			domain.LocaleJA: {{ID: "a", Name: "アルファ"}},
		},
	}
}

func (f *fakeLoader) LoadAll(locale domain.Locale) ([]*domain.Entry, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[locale]++
	if f.err != nil {
		return nil, f.err
	}
	src := f.sets[locale]
	out := make([]*domain.Entry, len(src))
	copy(out, src)
	return out, nil
}

func (f *fakeLoader) count(l domain.Locale) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[l]
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(l Loader, c *clock) *Store {
	return NewStore(l, index.NewListingCache(), Options{TTL: time.Hour, Now: c.Now}, logger.NewNop())
}

func TestGetOrRefreshWithinTTL(t *testing.T) {
	l := newFakeLoader()
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestStore(l, c)
	ctx := context.Background()

	first, err := s.GetOrRefresh(ctx, domain.LocaleEN)
	if err != nil {
		t.Fatalf("GetOrRefresh() error = %v", err)
	}

	c.Advance(59 * time.Minute)
	second, err := s.GetOrRefresh(ctx, domain.LocaleEN)
	if err != nil {
		t.Fatal(err)
	}
	if &first[0] != &second[0] {
		t.Error("within TTL the same slice must be returned")
	}
	if n := l.count(domain.LocaleEN); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}

	c.Advance(2 * time.Minute)
	if _, err := s.GetOrRefresh(ctx, domain.LocaleEN); err != nil {
		t.Fatal(err)
	}
	if n := l.count(domain.LocaleEN); n != 2 {
		t.Errorf("after TTL loader called %d times, want 2", n)
	}
}

func TestForceRefreshBypassesTTL(t *testing.T) {
	l := newFakeLoader()
	c := &clock{now: time.Now()}
	s := newTestStore(l, c)
	ctx := context.Background()

	if _, err := s.GetOrRefresh(ctx, domain.LocaleEN); err != nil {
		t.Fatal(err)
	}

	l.mu.Lock()
	l.sets[domain.LocaleEN] = append(l.sets[domain.LocaleEN], &domain.Entry{ID: "b"})
	l.mu.Unlock()

	got, err := s.ForceRefresh(ctx, domain.LocaleEN)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("ForceRefresh() = %d entries, want 2", len(got))
	}
	if e, ok, _ := s.Lookup(ctx, domain.LocaleEN, "b"); !ok || e.ID != "b" {
		t.Error("Lookup() should see the refreshed entry")
	}
}

func TestLocalesAreIndependent(t *testing.T) {
	l := newFakeLoader()
	c := &clock{now: time.Now()}
	s := newTestStore(l, c)
	ctx := context.Background()

	if _, err := s.GetOrRefresh(ctx, domain.LocaleEN); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ForceRefresh(ctx, domain.LocaleJA); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetOrRefresh(ctx, domain.LocaleEN); err != nil {
		t.Fatal(err)
	}
	if n := l.count(domain.LocaleEN); n != 1 {
		t.Errorf("refreshing ja reloaded en (%d loads)", n)
	}

	s.cache.Invalidate(domain.LocaleEN)
	if _, err := s.GetOrRefresh(ctx, domain.LocaleEN); err != nil {
		t.Fatal(err)
	}
	if n := l.count(domain.LocaleEN); n != 2 {
		t.Errorf("Invalidate() should force a load, got %d loads", n)
	}
}

// gatedLoader snapshots the listing on its first call and then blocks
// until released, so that load returns data older than later writes.
type gatedLoader struct {
	*fakeLoader
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedLoader) LoadAll(locale domain.Locale) ([]*domain.Entry, error) {
	first := false
	g.once.Do(func() { first = true })
	entries, err := g.fakeLoader.LoadAll(locale)
	if first {
		close(g.entered)
		<-g.release
	}
	return entries, err
}

func TestForceRefreshDoesNotJoinEarlierLoad(t *testing.T) {
	l := &gatedLoader{
		fakeLoader: newFakeLoader(),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	c := &clock{now: time.Now()}
	s := newTestStore(l, c)
	ctx := context.Background()

	stale := make(chan []*domain.Entry, 1)
	go func() {
		got, _ := s.GetOrRefresh(ctx, domain.LocaleEN)
		stale <- got
	}()
	<-l.entered

	l.mu.Lock()
	l.sets[domain.LocaleEN] = append(l.sets[domain.LocaleEN], &domain.Entry{ID: "new"})
	l.mu.Unlock()

	forced := make(chan []*domain.Entry, 1)
	go func() {
		got, err := s.ForceRefresh(ctx, domain.LocaleEN)
		if err != nil {
			t.Errorf("ForceRefresh() error = %v", err)
		}
		forced <- got
	}()

	var got []*domain.Entry
	select {
	case got = <-forced:
	case <-time.After(2 * time.Second):
		close(l.release)
		t.Fatal("ForceRefresh() waited on the earlier load")
	}
	close(l.release)
	<-stale

	if len(got) != 2 {
		t.Errorf("ForceRefresh() = %d entries, want 2", len(got))
	}
	if n := s.cache.Count(domain.LocaleEN); n != 2 {
		t.Errorf("cache holds %d entries after the earlier load finished, want 2", n)
	}
	if _, ok, _ := s.Lookup(ctx, domain.LocaleEN, "new"); !ok {
		t.Error("Lookup() misses the entry written before ForceRefresh")
	}
}

func TestRefreshErrorServesStale(t *testing.T) {
	l := newFakeLoader()
	c := &clock{now: time.Now()}
	s := newTestStore(l, c)
	ctx := context.Background()

	if _, err := s.GetOrRefresh(ctx, domain.LocaleEN); err != nil {
		t.Fatal(err)
	}
	l.mu.Lock()
	l.err = errors.New("disk on fire")
	l.mu.Unlock()

	got, err := s.ForceRefresh(ctx, domain.LocaleEN)
	if err != nil {
		t.Fatalf("ForceRefresh() with stale copy error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("stale listing = %d entries, want 1", len(got))
	}

	if _, err := s.GetOrRefresh(ctx, domain.LocaleDE); err == nil {
		t.Error("GetOrRefresh() without any copy should fail")
	}
}

func TestConcurrentRefreshSharesLoad(t *testing.T) {
	l := newFakeLoader()
	l.delay = 20 * time.Millisecond
	c := &clock{now: time.Now()}
	s := newTestStore(l, c)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.GetOrRefresh(context.Background(), domain.LocaleEN); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d concurrent loads failed", failures.Load())
	}
	if n := l.count(domain.LocaleEN); n > 2 {
		t.Errorf("concurrent refreshes ran %d loads, want them shared", n)
	}
}
