package middleware

import (
	"context"
	"net/http"
	"strings"
)

// VaryLocale sets Vary header for Accept-Language on dynamic responses
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

// DocLanguage applies the `doc_lang` toggle used by legal documents. The
// choice is kept in the session and never becomes part of the path.
func DocLanguage(fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyDocLangFB, fallback))
			switch q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("doc_lang"))); q {
			case "ko", "en":
				if s := GetSession(r); s.DocLang != q {
					s.DocLang = q
					s.MarkDirty()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DocLang returns the legal document language for the request.
func DocLang(r *http.Request) string {
	if s := GetSession(r); s.DocLang != "" {
		return s.DocLang
	}
	if fb, ok := r.Context().Value(ctxKeyDocLangFB).(string); ok && fb != "" {
		return fb
	}
	return "ko"
}
