package httpapi

import (
	"net/http"
	"strings"
)

// RequireToken validates the bearer token on every request before passing
// it to the next handler. The embedding application owns real session
// handling; this static token only fences off the API surface.
func RequireToken(validToken string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token != validToken {
			writeError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
