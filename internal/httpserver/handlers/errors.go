package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

type errorResponse struct {
	Error      string `json:"error"`
	ExistingID string `json:"existingId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Anything unknown is a
// 500 with a generic message; the cause is only logged.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	var (
		conflict *domain.ConflictError
		rejected *domain.RejectedError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Server not found"})
	case errors.Is(err, domain.ErrUnsupportedLocale):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:      "Server already exists",
			ExistingID: conflict.ExistingID,
		})
	case errors.As(err, &rejected):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: rejected.Reason})
	default:
		d.Logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
