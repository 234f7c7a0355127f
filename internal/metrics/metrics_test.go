package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("GET", "/", 200, time.Now())
	m.LLMCall("extract", nil)
	m.EnrichCache("hit")
	m.GitHubRequest(200, nil)
	m.CachePruned(3, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.LLMCall("translate", nil)
	m.LLMCall("translate", errors.New("boom"))
	m.EnrichCache("miss")
	m.GitHubRequest(0, errors.New("dial"))

	if got := testutil.ToFloat64(m.llmCalls.WithLabelValues("translate", "error")); got != 1 {
		t.Errorf("llm error count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.githubReqs.WithLabelValues("error")); got != 1 {
		t.Errorf("github error count = %v, want 1", got)
	}

	m.CachePruned(4, nil)
	m.CachePruned(2, nil)
	m.CachePruned(9, errors.New("redis down"))
	if got := testutil.ToFloat64(m.pruned.WithLabelValues("ok")); got != 6 {
		t.Errorf("pruned keys = %v, want 6", got)
	}
	if got := testutil.ToFloat64(m.pruned.WithLabelValues("error")); got != 1 {
		t.Errorf("prune errors = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "mcphub_enrich_cache_total") {
		t.Error("exposition missing enrich cache counter")
	}
}
