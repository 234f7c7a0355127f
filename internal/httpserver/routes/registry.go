// Package routes collects route groups from init functions and mounts
// them on the router in registration order.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var groups []group

// Register adds a named route group. The middlewares wrap only the
// group's routes.
func Register(name string, reg Registrar, mws ...Middleware) {
	groups = append(groups, group{name: name, reg: reg, mws: mws})
}

// Groups returns the registered group names in mount order.
func Groups() []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.name
	}
	return names
}

// RegisterAll mounts every group. Called once by httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		target := r
		if len(g.mws) > 0 {
			target = r.With(g.mws...)
		}
		g.reg(target, d)
		if d.Logger != nil {
			d.Logger.Debug("routes mounted", logger.String("group", g.name))
		}
	}
}
