package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mcphub"

// Metrics holds the process collectors. A nil *Metrics is a no-op so
// components can be built without it in tests.
type Metrics struct {
	registry   *prometheus.Registry
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	llmCalls   *prometheus.CounterVec
	enrichHits *prometheus.CounterVec
	githubReqs *prometheus.CounterVec
	pruned     *prometheus.CounterVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"})
	llmCalls := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "llm_calls_total"}, []string{"task", "status"})
	enrichHits := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "enrich_cache_total"}, []string{"result"})
	githubReqs := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "github_requests_total"}, []string{"status"})
	pruned := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "enrich_cache_pruned_keys_total"}, []string{"status"})
	r.MustRegister(httpReqCnt, httpDur, llmCalls, enrichHits, githubReqs, pruned)

	return &Metrics{
		registry:   r,
		httpReqCnt: httpReqCnt,
		httpDur:    httpDur,
		llmCalls:   llmCalls,
		enrichHits: enrichHits,
		githubReqs: githubReqs,
		pruned:     pruned,
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, since time.Time) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpReqCnt.WithLabelValues(method, route, code).Inc()
	m.httpDur.WithLabelValues(method, route, code).Observe(time.Since(since).Seconds())
}

// LLMCall counts one model call for task (extract, translate, classify).
func (m *Metrics) LLMCall(task string, err error) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(task, outcome(err)).Inc()
}

// EnrichCache counts a cache lookup result: hit, miss, stale or error.
func (m *Metrics) EnrichCache(result string) {
	if m == nil {
		return
	}
	m.enrichHits.WithLabelValues(result).Inc()
}

// GitHubRequest counts one API call by HTTP status, or "error".
func (m *Metrics) GitHubRequest(status int, err error) {
	if m == nil {
		return
	}
	label := "error"
	if err == nil {
		label = strconv.Itoa(status)
	}
	m.githubReqs.WithLabelValues(label).Inc()
}

// CachePruned counts index keys dropped by one prune run. A failed run
// is counted once under status "error".
func (m *Metrics) CachePruned(keys int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.pruned.WithLabelValues("error").Inc()
		return
	}
	m.pruned.WithLabelValues("ok").Add(float64(keys))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
