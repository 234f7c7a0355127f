package domain

import (
	"strings"
	"time"
)

// Entry is one catalog record: an MCP server with its static and
// enriched metadata.
//
// The JSON shape is the on-disk file format and the API payload.
// Unknown fields are dropped on decode.
type Entry struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated once at creation and never rewritten.
	ID string `json:"entryId"`

	// SourceID is SourceURL without its scheme.
	// Example: github.com/modelcontextprotocol/servers
	SourceID string `json:"sourceId"`

	// ─────────────────────────────
	// Descriptive fields (translatable: Name, Description)
	// ─────────────────────────────

	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Tags        []string `json:"tags"`
	IconRef     string   `json:"iconRef,omitempty"`
	LogoURL     string   `json:"logoUrl,omitempty"`

	// ─────────────────────────────
	// Flags & metrics
	// ─────────────────────────────

	RequiresCredential bool `json:"requiresCredential"`
	IsFeatured         bool `json:"isFeatured"`
	PopularityScore    int  `json:"popularityScore"`
	DownloadCount      int  `json:"downloadCount"`

	// CreatedAt and UpdatedAt are RFC 3339 strings.
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	SourceURL string `json:"sourceUrl"`

	// ─────────────────────────────
	// Enrichment (absent until computed)
	// ─────────────────────────────

	InstallInstructions string   `json:"installInstructions,omitempty"`
	UsageInstructions   string   `json:"usageInstructions,omitempty"`
	Features            []string `json:"features,omitempty"`
	Prerequisites       []string `json:"prerequisites,omitempty"`

	// LastEnrichedAt is epoch milliseconds.
	LastEnrichedAt *int64 `json:"lastEnrichedAt,omitempty"`

	// ─────────────────────────────
	// Repository metadata (absent until fetched)
	// ─────────────────────────────

	StarCount        *int    `json:"starCount,omitempty"`
	ForkCount        *int    `json:"forkCount,omitempty"`
	LatestCommitID   string  `json:"latestCommitId,omitempty"`
	LatestUpdateTime string  `json:"latestUpdateTime,omitempty"`
	OwnerName        string  `json:"ownerName,omitempty"`
	LicenseType      *string `json:"licenseType,omitempty"`
}

// Clone returns a deep copy so callers can merge onto it without
// touching the cached listing.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Tags = cloneStrings(e.Tags)
	c.Features = cloneStrings(e.Features)
	c.Prerequisites = cloneStrings(e.Prerequisites)
	if e.LastEnrichedAt != nil {
		v := *e.LastEnrichedAt
		c.LastEnrichedAt = &v
	}
	if e.StarCount != nil {
		v := *e.StarCount
		c.StarCount = &v
	}
	if e.ForkCount != nil {
		v := *e.ForkCount
		c.ForkCount = &v
	}
	if e.LicenseType != nil {
		v := *e.LicenseType
		c.LicenseType = &v
	}
	return &c
}

// Localize copies every non-text field of base onto e.
// Name, Description and the enrichment text fields are left alone.
func (e *Entry) Localize(base *Entry) {
	e.ID = base.ID
	e.SourceID = base.SourceID
	e.Author = base.Author
	e.Category = base.Category
	e.Tags = cloneStrings(base.Tags)
	e.IconRef = base.IconRef
	e.LogoURL = base.LogoURL
	e.RequiresCredential = base.RequiresCredential
	e.IsFeatured = base.IsFeatured
	e.PopularityScore = base.PopularityScore
	e.DownloadCount = base.DownloadCount
	e.CreatedAt = base.CreatedAt
	e.UpdatedAt = base.UpdatedAt
	e.SourceURL = base.SourceURL

	b := base.Clone()
	e.LastEnrichedAt = b.LastEnrichedAt
	e.StarCount = b.StarCount
	e.ForkCount = b.ForkCount
	e.LatestCommitID = b.LatestCommitID
	e.LatestUpdateTime = b.LatestUpdateTime
	e.OwnerName = b.OwnerName
	e.LicenseType = b.LicenseType
}

// ApplyMetadata merges repository metadata onto the entry.
// PopularityScore tracks the star count.
func (e *Entry) ApplyMetadata(md *RepoMetadata) {
	if md == nil {
		return
	}
	stars, forks := md.Stars, md.Forks
	e.StarCount = &stars
	e.ForkCount = &forks
	e.PopularityScore = md.Stars
	e.LatestCommitID = md.LatestCommitID
	e.LatestUpdateTime = md.LatestCommitTime
	e.OwnerName = md.OwnerName
	if md.License != nil {
		l := *md.License
		e.LicenseType = &l
	} else {
		e.LicenseType = nil
	}
}

// ApplyExtraction merges non-empty extracted fields onto the entry.
// An empty extraction leaves the record untouched.
func (e *Entry) ApplyExtraction(info ExtractedInfo) {
	if info.Name != "" {
		e.Name = info.Name
	}
	if info.Description != "" {
		e.Description = CleanDescription(info.Description)
	}
	if info.InstallInstructions != "" {
		e.InstallInstructions = info.InstallInstructions
	}
	if info.UsageInstructions != "" {
		e.UsageInstructions = info.UsageInstructions
	}
	if len(info.Features) > 0 {
		e.Features = cloneStrings(info.Features)
	}
	if len(info.Prerequisites) > 0 {
		e.Prerequisites = cloneStrings(info.Prerequisites)
	}
}

// Touch stamps UpdatedAt with t.
func (e *Entry) Touch(t time.Time) {
	e.UpdatedAt = FormatTime(t)
}

// MarkEnriched stamps LastEnrichedAt with t in epoch milliseconds.
func (e *Entry) MarkEnriched(t time.Time) {
	ms := t.UnixMilli()
	e.LastEnrichedAt = &ms
}

// SourceKey is the normalized SourceURL used for duplicate detection.
func (e *Entry) SourceKey() string {
	return NormalizeSourceURL(e.SourceURL)
}

// NormalizeSourceURL lower-cases the URL and drops the scheme, a
// leading "www.", any query or fragment, a ".git" suffix and trailing
// slashes.
func NormalizeSourceURL(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimRight(s, "/")
	s = strings.TrimSuffix(s, ".git")
	return s
}

// SourceIDFromURL derives the SourceID stored on new entries.
func SourceIDFromURL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimRight(s, "/")
}

// FormatTime renders t the way entry timestamps are stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
