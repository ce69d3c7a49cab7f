package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/handler/http/respond"
	authservice "blog-platform/internal/service/auth"
)

// Middleware resolves the session of every request. Requests without a
// valid session continue anonymously; a stale session cookie is cleared.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		user, sess, err := s.Resolve(r.Context(), r)
		RecordAuthDuration(time.Since(start).Seconds())

		switch {
		case err == nil:
			RecordAuthRequest("valid")
			ctx := authservice.WithUser(r.Context(), user)
			ctx = WithSession(ctx, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		case errors.Is(err, ErrNoSession):
			RecordAuthRequest("anonymous")
		case errors.Is(err, ErrInvalidSession):
			RecordAuthRequest("invalid")
			slog.Debug("session rejected",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("reason", err.Error()))
			if _, bearer := tokenFromRequest(r); !bearer {
				http.SetCookie(w, &http.Cookie{Name: SessionCookie, Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.secure})
			}
		default:
			RecordAuthRequest("error")
			slog.Error("session lookup failed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.Any("error", respond.SanitizeError(err)))
		}
		next.ServeHTTP(w, r)
	})
}

// loginRequired is the 401 body; LoginURL carries the original path as next.
type loginRequired struct {
	Error    string `json:"error" example:"login required"`
	LoginURL string `json:"login_url" example:"/accounts/login?next=%2Farticles"`
}

// LoginURLFor returns the login URL that leads back to r.
func LoginURLFor(r *http.Request) string {
	return LoginURL + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
}

// RespondLoginRequired writes the 401 answer for anonymous requests.
func RespondLoginRequired(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusUnauthorized, loginRequired{Error: "login required", LoginURL: LoginURLFor(r)})
}

// RequireLogin rejects anonymous requests with 401.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authservice.UserFromContext(r.Context()); !ok {
			RespondLoginRequired(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
