package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"

	"blog-platform/internal/handler/http/respond"
)

const (
	// CSRFCookie holds the CSRF token; it is readable by scripts on purpose.
	CSRFCookie = "csrftoken"

	// CSRFHeader must echo the CSRF cookie on unsafe requests.
	CSRFHeader = "X-CSRF-Token"
)

// CSRF returns the double-submit cookie check. It applies to unsafe methods
// of cookie-authenticated requests; bearer requests and requests without a
// session cookie cannot be forged by a third-party site and pass through.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				if c, err := r.Cookie(CSRFCookie); err != nil || c.Value == "" {
					setCSRFCookie(w, newCSRFToken(), secure)
				}
				next.ServeHTTP(w, r)
				return
			}

			token, bearer := tokenFromRequest(r)
			if bearer || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			reason := ""
			cookie, err := r.Cookie(CSRFCookie)
			header := r.Header.Get(CSRFHeader)
			switch {
			case err != nil || cookie.Value == "":
				reason = "missing_cookie"
			case header == "":
				reason = "missing_header"
			case subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1:
				reason = "mismatch"
			}
			if reason != "" {
				RecordCSRFRejection(reason)
				slog.Warn("CSRF validation failed",
					slog.String("reason", reason),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				respond.JSON(w, http.StatusForbidden, map[string]string{"error": "CSRF token validation failed"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func newCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand は失敗しない前提
		panic(err)
	}
	return hex.EncodeToString(b)
}

func setCSRFCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    token,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
