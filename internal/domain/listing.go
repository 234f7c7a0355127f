package domain

import (
	"sort"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Filter narrows a listing. Zero values disable each criterion.
type Filter struct {
	Category     Category
	Text         string
	FeaturedOnly bool
}

// Page is one slice of a filtered, sorted listing.
type Page struct {
	Entries     []*Entry
	TotalItems  int
	CurrentPage int
	TotalPages  int
}

// FilterEntries keeps entries matching f, preserving input order.
func FilterEntries(entries []*Entry, f Filter) []*Entry {
	needle := strings.ToLower(strings.TrimSpace(f.Text))
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.FeaturedOnly && !e.IsFeatured {
			continue
		}
		if needle != "" && !matchesText(e, needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// matchesText does a case-insensitive substring match over name,
// author, description and tags. needle is already lower case.
func matchesText(e *Entry, needle string) bool {
	if strings.Contains(strings.ToLower(e.Name), needle) ||
		strings.Contains(strings.ToLower(e.Author), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// SortFeaturedFirst stably moves featured entries ahead of the rest.
// It sorts a copy; the input slice is not reordered.
func SortFeaturedFirst(entries []*Entry) []*Entry {
	out := make([]*Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsFeatured && !out[j].IsFeatured
	})
	return out
}

// Paginate slices entries into page (1-based) of size. Out-of-range
// pages yield an empty slice with correct totals.
func Paginate(entries []*Entry, page, size int) Page {
	page, size = NormalizePaging(page, size)
	total := len(entries)

	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	result := Page{
		Entries:     []*Entry{},
		TotalItems:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}

	start := (page - 1) * size
	if start >= total {
		return result
	}
	end := start + size
	if end > total {
		end = total
	}
	result.Entries = entries[start:end]
	return result
}

// NormalizePaging clamps page to ≥ 1 and size to [1, MaxPageSize].
// A non-positive size yields DefaultPageSize.
func NormalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Query runs filter, featured-first sort and pagination in order.
func Query(entries []*Entry, f Filter, page, size int) Page {
	return Paginate(SortFeaturedFirst(FilterEntries(entries, f)), page, size)
}

// FindByID returns the entry with the given id.
func FindByID(entries []*Entry, id string) (*Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// FindBySource returns the entry whose normalized SourceURL matches.
func FindBySource(entries []*Entry, sourceURL string) (*Entry, bool) {
	key := NormalizeSourceURL(sourceURL)
	if key == "" {
		return nil, false
	}
	for _, e := range entries {
		if e.SourceKey() == key {
			return e, true
		}
	}
	return nil, false
}
