package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const crawlFixture = `# Servers

## Reference Servers

- **[Fetch](src/fetch)** - Web content fetching

## Community Servers

- **[Weather](https://github.com/someone/weather-mcp)** - Forecasts
- **[Weather again](https://github.com/someone/weather-mcp/issues)** - duplicate
`

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MCPHUB_DATA_DIR", dir)
	t.Setenv("MCPHUB_CACHE_BACKEND", "memory")
	t.Setenv("MCPHUB_LLM_API_KEY", "")
	t.Setenv("MCPHUB_METRICS_ENABLED", "false")
	t.Setenv("MCPHUB_LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs([]string{})
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "mcphub ") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "version", "dedupe", "localize", "recategorize", "refresh-metadata", "cache", "crawl"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, name := range []string{"stats", "flush", "prune"} {
		cmd, _, err := rootCmd.Find([]string{"cache", name})
		if err != nil || cmd.Name() != name {
			t.Errorf("cache subcommand %q not registered", name)
		}
	}
}

func TestCrawlPrintsListings(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(crawlFixture))
	}))
	defer srv.Close()

	out, err := execute(t, "crawl", "--url", srv.URL+"/README.md", "--output", "")
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}

	var res struct {
		Metadata struct {
			TotalServers int    `json:"totalServers"`
			SourceURL    string `json:"sourceUrl"`
		} `json:"metadata"`
		Servers []struct {
			URL  string `json:"githubUrl"`
			Kind string `json:"type"`
		} `json:"servers"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if res.Metadata.TotalServers != 2 {
		t.Fatalf("want 2 servers, got %d", res.Metadata.TotalServers)
	}
	if res.Servers[0].URL != "https://github.com/modelcontextprotocol/servers/tree/main/src/fetch" {
		t.Errorf("unexpected first url %q", res.Servers[0].URL)
	}
	if res.Servers[1].Kind != "Community Server" {
		t.Errorf("unexpected kind %q", res.Servers[1].Kind)
	}
}

func TestCrawlWritesOutputFile(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(crawlFixture))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "servers.json")
	if _, err := execute(t, "crawl", "--url", srv.URL, "--output", path); err != nil {
		t.Fatalf("crawl: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Contains(data, []byte("weather-mcp")) {
		t.Fatalf("output missing listing: %s", data)
	}
}

func TestCrawlFailsOnUnreachableDocument(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := execute(t, "crawl", "--url", srv.URL, "--output", ""); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestCacheStatsOnMemoryBackend(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	if !strings.Contains(out, `"backend": "memory"`) || !strings.Contains(out, `"records": 0`) {
		t.Fatalf("unexpected stats %q", out)
	}

	out, err = execute(t, "cache", "prune")
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	if !strings.Contains(out, "nothing to prune") {
		t.Fatalf("unexpected prune output %q", out)
	}
}
