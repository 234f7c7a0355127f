package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

type reloadResponse struct {
	Status string `json:"status"`
}

// Reload triggers a manual reload of every locale listing.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "reload is not available"})
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual listing reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Status: "reload triggered"})
		default:
			d.Logger.Warn("listing reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{Status: "reload already in progress, please wait"})
		}
	}
}
