package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// NewAPIKeyHandler returns a middleware that requires every request to carry
// "Authorization: Bearer <key>". Requests without a matching key get 401.
// An empty key disables the check, which is how the bin store runs in
// development.
//
// Paths listed in public (e.g. "/healthz") are always let through.
func NewAPIKeyHandler(key string, public ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		want := []byte(key)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range public {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="bins"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"missing or invalid API key"}}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
