package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/version"
)

type healthzResponse struct {
	Status        string       `json:"status"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	Build         version.Info `json:"build"`
}

type readyzResponse struct {
	Ready   bool `json:"ready"`
	Entries int  `json:"entries"`
}

// Healthz is the liveness probe. It never touches the catalog.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: int64(d.Now().Sub(d.StartTime).Seconds()),
			Build:         d.Build,
		})
	}
}

// Readyz turns ready once the default-locale listing is loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		var entries []*domain.Entry
		ok := false
		if d.Listings != nil {
			entries, _, ok = d.Listings.Get(domain.DefaultLocale)
		}
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Entries: len(entries)})
	}
}
