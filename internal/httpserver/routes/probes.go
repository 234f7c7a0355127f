package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/mw"
)

func init() { Register("probes", registerProbes) }

// Probes stay open to orchestrators; /infra exposes internals and is
// restricted like the other admin endpoints.
func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/infra", handlers.Infra(d))
}
