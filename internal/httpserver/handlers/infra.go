package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
	Records *int64 `json:"records,omitempty"`
	Pending *int   `json:"pending,omitempty"`
}

type listingStatus struct {
	Entries    int    `json:"entries"`
	LastReload string `json:"last_reload"`
}

type infraResponse struct {
	Status     string                          `json:"status"`
	Listings   map[domain.Locale]listingStatus `json:"listings"`
	Components map[string]componentStatus      `json:"components"`
}

const infraProbeTimeout = 2 * time.Second

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), infraProbeTimeout)
		defer cancel()

		listings := listingStatuses(d)
		components := map[string]componentStatus{
			"enrich_cache": checkEnrichCache(ctx, d),
			"llm":          checkLLM(d),
		}
		if d.CacheBackend == "redis" {
			components["redis"] = checkRedis(ctx, d)
		}
		if d.Localizer != nil {
			pending := d.Localizer.Pending()
			components["localizer"] = componentStatus{OK: true, Pending: &pending}
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(listings, components),
			Listings:   listings,
			Components: components,
		})
	}
}

func listingStatuses(d deps.Deps) map[domain.Locale]listingStatus {
	out := make(map[domain.Locale]listingStatus, len(domain.AllLocales()))
	for _, l := range domain.AllLocales() {
		st := listingStatus{LastReload: "never"}
		if d.Listings != nil {
			st.Entries = d.Listings.Count(l)
			if t := d.Listings.LastLoad(l); !t.IsZero() {
				st.LastReload = domain.FormatTime(t)
			}
		}
		out[l] = st
	}
	return out
}

// overallStatus is critical without a default-locale listing and
// degraded when any component is unhealthy.
func overallStatus(listings map[domain.Locale]listingStatus, components map[string]componentStatus) string {
	if listings[domain.DefaultLocale].Entries == 0 {
		return "critical"
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkEnrichCache(ctx context.Context, d deps.Deps) componentStatus {
	st := componentStatus{OK: true, Mode: d.CacheBackend}
	if d.EnrichCache == nil {
		return st
	}
	n, err := d.EnrichCache.Count(ctx)
	if err != nil {
		st.OK = false
		st.Impact = "enrichment-recomputed-per-request"
		st.Error = err.Error()
		return st
	}
	st.Records = &n
	return st
}

func checkLLM(d deps.Deps) componentStatus {
	if !d.LLMConfigured {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "keyword-classification-no-translation",
		}
	}
	return componentStatus{OK: true, Mode: "enabled"}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "enrichment-cache-disabled",
			Error:  "client not initialized",
		}
	}
	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "enrichment-cache-disabled",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}
