package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/llm"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

func TestClassifyByKeyword(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        domain.Category
	}{
		{"empty", "", domain.CategoryOtherTools},
		{"no match", "A quirky utility", domain.CategoryOtherTools},
		{"databases", "Query a PostgreSQL database with SQL", domain.CategoryDatabases},
		{"case insensitive", "SLACK and DISCORD notifications", domain.CategoryCommunication},
		{"browser", "Automate Chrome with Playwright", domain.CategoryBrowserAutomation},
		// "s3" scores once for cloud and once for file systems: the earlier rule wins.
		{"tie goes to declaration order", "s3", domain.CategoryCloudPlatforms},
		{"highest score wins", "git commit, branch and merge helpers", domain.CategoryVersionControl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyByKeyword(tt.description); got != tt.want {
				t.Errorf("ClassifyByKeyword(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		err         error
		srvName     string
		description string
		want        domain.Category
	}{
		{"plain reply", "databases", nil, "pg", "postgres", domain.CategoryDatabases},
		{"quoted reply", `"Search"`, nil, "brave", "web search", domain.CategorySearch},
		{"backticked reply", "`version-control`\n", nil, "git", "git tools", domain.CategoryVersionControl},
		{"unknown reply", "weather", nil, "wx", "forecasts", domain.CategoryOtherTools},
		{"sentinel reply rejected", "uncategorized", nil, "wx", "forecasts", domain.CategoryOtherTools},
		{"model failure uses keywords", "", errors.New("down"), "pg", "a mysql database", domain.CategoryDatabases},
		{"model failure no keywords", "", errors.New("down"), "x", "quirky", domain.CategoryOtherTools},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
				return tt.reply, tt.err
			}), nil, logger.NewNop(), nil)

			got := c.Classify(context.Background(), tt.srvName, tt.description)
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("Classify() returned %q outside the closed set", got)
			}
		})
	}
}

func TestClassifyEmptyInputSkipsModel(t *testing.T) {
	called := false
	c := New(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
		called = true
		return "databases", nil
	}), nil, logger.NewNop(), nil)

	if got := c.Classify(context.Background(), " ", ""); got != domain.CategoryOtherTools {
		t.Errorf("Classify(empty) = %q", got)
	}
	if called {
		t.Error("model called for empty input")
	}
}

func TestClassifyPromptListsCategories(t *testing.T) {
	var prompt string
	c := New(llm.CompleterFunc(func(_ context.Context, p, _ string) (string, error) {
		prompt = p
		return "search", nil
	}), nil, logger.NewNop(), nil)
	c.Classify(context.Background(), "Brave", "web search")

	for _, k := range domain.CategoryKeys() {
		if !strings.Contains(prompt, string(k)) {
			t.Errorf("prompt missing %q", k)
		}
	}
}

func TestKeywordClosure(t *testing.T) {
	inputs := []string{"", "x", "database file cloud", "ide editor build", "map gps", "rag vector"}
	for _, in := range inputs {
		if got := ClassifyByKeyword(in); !got.Valid() {
			t.Errorf("ClassifyByKeyword(%q) = %q outside the closed set", in, got)
		}
	}
}

func TestLoadKeywordRules(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte(`rules:
  - category: Search
    keywords: [" Brave ", find]
  - category: databases
    keywords: [duckdb]
`), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadKeywordRules(good)
	if err != nil {
		t.Fatalf("LoadKeywordRules() error = %v", err)
	}
	if len(rules) != 2 || rules[0].Category != domain.CategorySearch || rules[0].Keywords[0] != "brave" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
	if got := rules.Match("Embedded DuckDB"); got != domain.CategoryDatabases {
		t.Errorf("Match() = %q, want databases", got)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("rules:\n  - category: weather\n    keywords: [rain]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKeywordRules(bad); err == nil {
		t.Error("expected error for unknown category")
	}

	if _, err := LoadKeywordRules(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
