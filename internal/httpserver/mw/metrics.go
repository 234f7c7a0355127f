package mw

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/metrics"
)

// Metrics records request count and latency by route pattern, so ids in
// paths do not explode label cardinality.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrap(w, r)

			next.ServeHTTP(ww, r)

			m.ObserveHTTP(r.Method, routePattern(r), statusOf(ww), start)
		})
	}
}
