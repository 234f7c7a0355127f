package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
)

func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, d.Catalog.Categories())
	}
}

func Locales(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, d.Catalog.Locales())
	}
}
