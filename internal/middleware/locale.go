package middleware

import (
	"net/http"

	"github.com/hitoshi/newsman/internal/i18n"
)

// NewLocaleMiddleware はAccept-Languageから応答言語を選び、コンテキストに格納する。
func NewLocaleMiddleware(catalog *i18n.Catalog) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := catalog.Match(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", l.Tag().String())
			next.ServeHTTP(w, r.WithContext(i18n.WithLocalizer(r.Context(), l)))
		})
	}
}
