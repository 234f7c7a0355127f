package domain

import "time"

// ExtractedInfo is the fixed JSON shape requested from the model.
type ExtractedInfo struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	InstallInstructions string   `json:"installInstructions"`
	UsageInstructions   string   `json:"usageInstructions"`
	Features            []string `json:"features"`
	Prerequisites       []string `json:"prerequisites"`
}

// EmptyExtraction is the all-empty fallback. Slices are non-nil.
func EmptyExtraction() ExtractedInfo {
	return ExtractedInfo{
		Features:      []string{},
		Prerequisites: []string{},
	}
}

// IsEmpty reports whether nothing usable was extracted.
func (x ExtractedInfo) IsEmpty() bool {
	return x.Name == "" && x.Description == "" &&
		x.InstallInstructions == "" && x.UsageInstructions == "" &&
		len(x.Features) == 0 && len(x.Prerequisites) == 0
}

// RepoMetadata is what the hosting provider reports for a repository.
type RepoMetadata struct {
	Owner            string
	Repo             string
	Stars            int
	Forks            int
	OwnerName        string
	License          *string // SPDX id, nil when unknown
	LatestCommitID   string
	LatestCommitTime string
}

// Enriched is one enrichment cache record keyed by entry id and locale.
type Enriched struct {
	Key   string `json:"key"`
	Entry *Entry `json:"entry"`
}

// EnrichmentKey builds the cache key for (id, locale).
func EnrichmentKey(id string, locale Locale) string {
	return id + "_" + string(locale)
}

// Fresh reports whether the record was enriched within ttl of now.
func (e *Enriched) Fresh(now time.Time, ttl time.Duration) bool {
	if e == nil || e.Entry == nil || e.Entry.LastEnrichedAt == nil {
		return false
	}
	age := now.UnixMilli() - *e.Entry.LastEnrichedAt
	return age <= ttl.Milliseconds()
}
