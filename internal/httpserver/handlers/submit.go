package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

type submitRequest struct {
	GithubURL string `json:"githubUrl"`
}

type submitResponse struct {
	Server *domain.Entry `json:"server"`
}

const maxSubmitBody = 8 << 10

// Submit creates a catalog entry from a repository URL.
func Submit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody))
		if err := dec.Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		url := strings.TrimSpace(req.GithubURL)
		if url == "" {
			badRequest(w, "githubUrl is required")
			return
		}

		e, err := d.Catalog.Submit(r.Context(), url)
		if err != nil {
			writeError(w, r, d, err)
			return
		}

		d.Logger.Info("server submitted",
			logger.String("entry_id", e.ID),
			logger.String("source_url", e.SourceURL))
		writeJSON(w, http.StatusCreated, submitResponse{Server: e})
	}
}
