package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/mw"
)

func init() { Register("hub", registerServers) }

func registerServers(r chi.Router, d deps.Deps) {
	r.Route("/v1/hub", func(r chi.Router) {
		r.Get("/servers", handlers.ListServers(d))
		r.Get("/servers/{entryId}", handlers.GetServer(d))
		r.Post("/search_servers", handlers.SearchServers(d))
		r.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.SubmitBurst,
			RefillPerIPPerMin: d.SubmitPerMin,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
			Now:               d.TimeNow,
		})).Post("/servers/submit", handlers.Submit(d))
		r.Get("/categories", handlers.Categories(d))
		r.Get("/locales", handlers.Locales(d))
	})

	r.Get("/v1/mcp/servers", handlers.PublicServers(d))
}
