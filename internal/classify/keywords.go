package classify

import (
	"fmt"
	"os"
	"strings"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"gopkg.in/yaml.v3"
)

// KeywordRule scores a category by how many of its keywords appear in a
// description.
type KeywordRule struct {
	Category domain.Category `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
}

// KeywordRules is evaluated in order; earlier rules win ties.
type KeywordRules []KeywordRule

type keywordsFile struct {
	Rules []KeywordRule `yaml:"rules"`
}

// DefaultKeywordRules returns the built-in table.
func DefaultKeywordRules() KeywordRules {
	return KeywordRules{
		{domain.CategoryBrowserAutomation, []string{"browser", "web", "automation", "chrome", "firefox", "selenium", "puppeteer", "playwright"}},
		{domain.CategoryCloudPlatforms, []string{"cloud", "aws", "azure", "gcp", "google cloud", "s3", "ec2", "lambda"}},
		{domain.CategoryCommunication, []string{"message", "email", "chat", "communication", "slack", "discord", "teams", "notification"}},
		{domain.CategoryDatabases, []string{"database", "sql", "nosql", "mongodb", "postgres", "mysql", "redis", "data storage"}},
		{domain.CategoryFileSystems, []string{"file", "storage", "directory", "filesystem", "s3", "blob"}},
		{domain.CategoryKnowledgeMemory, []string{"knowledge", "memory", "information", "retrieval", "rag", "vector", "embedding"}},
		{domain.CategoryLocationServices, []string{"location", "map", "gps", "geolocation", "position", "places", "navigation"}},
		{domain.CategoryMonitoring, []string{"monitor", "logging", "log", "trace", "metrics", "observability", "health"}},
		{domain.CategorySearch, []string{"search", "find", "query", "lookup", "index", "elasticsearch"}},
		{domain.CategoryVersionControl, []string{"git", "svn", "version control", "repository", "commit", "branch", "merge"}},
		{domain.CategoryIntegrations, []string{"integration", "connect", "middleware", "api", "connection", "bridge"}},
		{domain.CategoryDeveloperTools, []string{"developer", "development", "code", "programming", "ide", "editor", "build", "compile"}},
	}
}

// LoadKeywordRules reads a YAML rule table:
//
//	rules:
//	  - category: databases
//	    keywords: [sql, postgres]
func LoadKeywordRules(path string) (KeywordRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var f keywordsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse keywords yaml: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("keywords file %s has no rules", path)
	}

	rules := make(KeywordRules, 0, len(f.Rules))
	for i, r := range f.Rules {
		c, ok := domain.ParseCategory(string(r.Category))
		if !ok {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, r.Category)
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		rules = append(rules, KeywordRule{Category: c, Keywords: kws})
	}
	return rules, nil
}

// Match returns the best-scoring category for description, or the
// default category when nothing matches.
func (rules KeywordRules) Match(description string) domain.Category {
	if description == "" {
		return domain.DefaultCategory
	}
	lower := strings.ToLower(description)

	best := domain.DefaultCategory
	bestScore := 0
	for _, r := range rules {
		score := 0
		for _, k := range r.Keywords {
			if strings.Contains(lower, k) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = r.Category, score
		}
	}
	return best
}

// ClassifyByKeyword matches description against the built-in table.
func ClassifyByKeyword(description string) domain.Category {
	return defaultRules.Match(description)
}

var defaultRules = DefaultKeywordRules()
