package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/kazz187/leavepush/pkg/cerr"
)

// RequireAPIKey rejects requests that do not carry key in X-API-Key or as a
// bearer token. An empty key disables the check.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if got == "" {
				got, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				cerr.SetNewJSONError(r.Context(), cerr.Unauthenticated, "invalid api key", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
