package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
)

// slot holds one locale's decoded listing.
type slot struct {
	entries  []*domain.Entry
	byID     map[string]*domain.Entry
	loadedAt time.Time
}

// ListingCache keeps the decoded entry set of each locale in memory.
// Slots are independent: replacing one locale never touches another.
type ListingCache struct {
	mu    sync.RWMutex
	slots map[domain.Locale]*slot
}

// NewListingCache creates an empty cache.
func NewListingCache() *ListingCache {
	return &ListingCache{
		slots: make(map[domain.Locale]*slot),
	}
}

// Update replaces locale's slot with entries loaded at loadedAt.
// The slice is kept as-is; callers must not mutate it afterwards.
func (c *ListingCache) Update(locale domain.Locale, entries []*domain.Entry, loadedAt time.Time) {
	byID := make(map[string]*domain.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots[locale] = &slot{
		entries:  entries,
		byID:     byID,
		loadedAt: loadedAt,
	}
}

// Get returns locale's listing and when it was loaded.
func (c *ListingCache) Get(locale domain.Locale) ([]*domain.Entry, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.slots[locale]
	if !ok {
		return nil, time.Time{}, false
	}
	return s.entries, s.loadedAt, true
}

// Lookup finds an entry by id in locale's slot.
func (c *ListingCache) Lookup(locale domain.Locale, id string) (*domain.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.slots[locale]
	if !ok {
		return nil, false
	}
	e, ok := s.byID[id]
	return e, ok
}

// Invalidate drops locale's slot.
func (c *ListingCache) Invalidate(locale domain.Locale) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.slots, locale)
}

// Count returns the number of entries cached for locale.
func (c *ListingCache) Count(locale domain.Locale) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if s, ok := c.slots[locale]; ok {
		return len(s.entries)
	}
	return 0
}

// LastLoad returns the load time of locale's slot, zero when absent.
func (c *ListingCache) LastLoad(locale domain.Locale) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if s, ok := c.slots[locale]; ok {
		return s.loadedAt
	}
	return time.Time{}
}
