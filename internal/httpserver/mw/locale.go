package mw

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/mcphub/internal/domain"
)

type localeKey struct{}

// supported is index-aligned with domain.AllLocales().
var (
	supported = []language.Tag{
		language.English,
		language.SimplifiedChinese,
		language.TraditionalChinese,
		language.Japanese,
		language.Spanish,
		language.German,
	}
	matcher = language.NewMatcher(supported)
)

// Negotiate picks the closest supported locale for an Accept-Language
// header. No usable match yields the default locale.
func Negotiate(acceptLanguage string) domain.Locale {
	if acceptLanguage == "" {
		return domain.DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return domain.DefaultLocale
	}

	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return domain.DefaultLocale
	}
	locales := domain.AllLocales()
	if idx < 0 || idx >= len(locales) {
		return domain.DefaultLocale
	}
	return locales[idx]
}

// Locale stores the Accept-Language negotiated locale in the request
// context. Handlers still prefer an explicit locale parameter.
func Locale() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := Negotiate(r.Header.Get("Accept-Language"))
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localeKey{}, l)))
		})
	}
}

// LocaleFrom returns the negotiated locale, or the default when the
// middleware did not run.
func LocaleFrom(ctx context.Context) domain.Locale {
	if l, ok := ctx.Value(localeKey{}).(domain.Locale); ok {
		return l
	}
	return domain.DefaultLocale
}
