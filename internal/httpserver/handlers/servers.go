package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/sjson"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

// ListServers returns the full listing for a locale.
func ListServers(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale, err := resolveLocale(r, r.URL.Query().Get("locale"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		entries, err := d.Catalog.Listing(r.Context(), locale)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if entries == nil {
			entries = []*domain.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// GetServer returns one enriched entry.
func GetServer(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale, err := resolveLocale(r, r.URL.Query().Get("locale"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		id := chi.URLParam(r, "entryId")
		if id == "" {
			writeError(w, r, d, domain.ErrNotFound)
			return
		}

		e, err := d.Catalog.GetByID(r.Context(), locale, id)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// PublicServers mirrors the listing without internal identifiers.
func PublicServers(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locale, err := resolveLocale(r, r.URL.Query().Get("locale"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		entries, err := d.Catalog.Listing(r.Context(), locale)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		out := make([]json.RawMessage, 0, len(entries))
		for _, e := range entries {
			raw, err := json.Marshal(e)
			if err != nil {
				d.Logger.Warn("skipping unencodable entry",
					logger.String("entry_id", e.ID),
					logger.Error(err))
				continue
			}
			raw, err = sjson.DeleteBytes(raw, "entryId")
			if err != nil {
				writeError(w, r, d, err)
				return
			}
			out = append(out, raw)
		}
		writeJSON(w, http.StatusOK, out)
	}
}
