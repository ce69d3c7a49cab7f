package http

import (
	"errors"
	"net/http"

	"blog-platform/internal/handler/http/auth"
	"blog-platform/internal/handler/http/respond"
)

// Input limits. A signed session token is well below 1KB.
const (
	maxAuthorizationHeader = 8 << 10
	maxSessionCookie       = 4 << 10
	maxPathLength          = 2 << 10
	DefaultMaxBodyBytes    = 1 << 20
)

var (
	errAuthorizationTooLarge = errors.New("authorization header too large")
	errSessionCookieTooLarge = errors.New("session cookie too large")
	errURITooLong            = errors.New("URI too long")
)

// InputValidation rejects oversized credentials and paths before any
// session lookup happens, and caps the request body at maxBody bytes.
func InputValidation(maxBody int64) func(http.Handler) http.Handler {
	limitBody := LimitRequestBody(maxBody)
	return func(next http.Handler) http.Handler {
		limited := limitBody(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthorizationHeader {
				respond.Error(w, http.StatusBadRequest, errAuthorizationTooLarge)
				return
			}
			if c, err := r.Cookie(auth.SessionCookie); err == nil && len(c.Value) > maxSessionCookie {
				respond.Error(w, http.StatusBadRequest, errSessionCookieTooLarge)
				return
			}
			if len(r.URL.Path) > maxPathLength {
				respond.Error(w, http.StatusRequestURITooLong, errURITooLong)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
