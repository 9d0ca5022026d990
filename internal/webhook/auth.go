package webhook

import (
	"crypto/subtle"
	"net/http"
)

// VerifySecret returns a middleware that rejects requests whose secret
// header does not match secret. An empty secret disables the check.
func VerifySecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(SecretHeader)
			if subtle.ConstantTimeCompare([]byte(secret), []byte(got)) != 1 {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
