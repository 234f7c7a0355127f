package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/mcphub/internal/catalog"
	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
)

type searchRequest struct {
	CategoryKey   string `json:"categoryKey"`
	Locale        string `json:"locale"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	SearchFor     string `json:"search_for"`
	IsRecommended bool   `json:"isRecommended"`
}

type searchResponse struct {
	Servers     []*domain.Entry `json:"servers"`
	TotalItems  int             `json:"totalItems"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
}

const maxSearchBody = 64 << 10

// SearchServers filters and paginates a locale's listing. An empty body
// is a search with every criterion unset.
func SearchServers(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if r.Body != nil {
			dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody))
			if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				badRequest(w, "invalid JSON body")
				return
			}
		}

		locale, err := resolveLocale(r, req.Locale)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		page, err := d.Catalog.Search(r.Context(), catalog.SearchQuery{
			Locale:       locale,
			Category:     domain.Category(req.CategoryKey),
			Text:         req.SearchFor,
			Page:         req.Page,
			PageSize:     req.Size,
			FeaturedOnly: req.IsRecommended,
		})
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		writeJSON(w, http.StatusOK, searchResponse{
			Servers:     page.Entries,
			TotalItems:  page.TotalItems,
			CurrentPage: page.CurrentPage,
			TotalPages:  page.TotalPages,
		})
	}
}
