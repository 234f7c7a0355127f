package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/mw"
)

// resolveLocale prefers an explicit value, then the negotiated one.
func resolveLocale(r *http.Request, explicit string) (domain.Locale, error) {
	if strings.TrimSpace(explicit) == "" {
		return mw.LocaleFrom(r.Context()), nil
	}
	return domain.ParseLocale(explicit)
}
