package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/mcphub/internal/logger"
	"github.com/MrSnakeDoc/mcphub/internal/utils"
)

// AllowOnlyCIDRS restricts admin endpoints (reload, metrics, infra) to
// the given IPs/CIDRs. An empty list does NOT filter.
// trustProxy should be true behind a trusted reverse proxy.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	set := utils.ParseCIDRSet(allowed)
	if len(set) == 0 {
		log.Debug("AllowOnlyCIDRS: no valid rules, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("AllowOnlyCIDRS: initialized",
		logger.Int("rules", len(set)),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !set.Contains(ip) {
				log.Warn("admin endpoint rejected client",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path),
					logger.String("remote_addr", r.RemoteAddr))
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"Forbidden"}` + "\n"))
}
