package domain

import "strings"

// Category is a closed-set category identifier.
type Category string

const (
	CategoryBrowserAutomation Category = "browser-automation"
	CategoryCloudPlatforms    Category = "cloud-platforms"
	CategoryCommunication     Category = "communication"
	CategoryDatabases         Category = "databases"
	CategoryFileSystems       Category = "file-systems"
	CategoryKnowledgeMemory   Category = "knowledge-memory"
	CategoryLocationServices  Category = "location-services"
	CategoryMonitoring        Category = "monitoring"
	CategorySearch            Category = "search"
	CategoryVersionControl    Category = "version-control"
	CategoryIntegrations      Category = "integrations"
	CategoryDeveloperTools    Category = "developer-tools"
	CategoryOtherTools        Category = "other-tools"

	// CategoryUncategorized may appear on stored entries but is never
	// produced by classification.
	CategoryUncategorized Category = "uncategorized"

	// DefaultCategory is the classifier fallback.
	DefaultCategory = CategoryOtherTools
)

// CategoryInfo pairs an identifier with its display name.
type CategoryInfo struct {
	Key  Category `json:"key"`
	Name string   `json:"name"`
}

// categories is in declaration order. Keyword tie-breaking depends on it.
var categories = []CategoryInfo{
	{CategoryBrowserAutomation, "Browser Automation"},
	{CategoryCloudPlatforms, "Cloud Platforms"},
	{CategoryCommunication, "Communication"},
	{CategoryDatabases, "Databases"},
	{CategoryFileSystems, "File Systems"},
	{CategoryKnowledgeMemory, "Knowledge & Memory"},
	{CategoryLocationServices, "Location Services"},
	{CategoryMonitoring, "Monitoring"},
	{CategorySearch, "Search"},
	{CategoryVersionControl, "Version Control"},
	{CategoryIntegrations, "Integrations"},
	{CategoryDeveloperTools, "Developer Tools"},
	{CategoryOtherTools, "Other Tools"},
}

// Categories returns the closed set in declaration order.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// CategoryKeys returns only the identifiers, in declaration order.
func CategoryKeys() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c.Key
	}
	return out
}

// Valid reports whether c belongs to the closed set.
// The uncategorized sentinel is not valid.
func (c Category) Valid() bool {
	for _, info := range categories {
		if info.Key == c {
			return true
		}
	}
	return false
}

// ParseCategory matches s case-insensitively against the closed set.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	c := Category(s)
	if c.Valid() {
		return c, true
	}
	return "", false
}

// DisplayName returns the human label, or the raw key when unknown.
func (c Category) DisplayName() string {
	for _, info := range categories {
		if info.Key == c {
			return info.Name
		}
	}
	return string(c)
}
