// Package auth binds login sessions to HTTP requests. A session is a row in
// the sessions table; the client holds a signed JWT naming it, either in the
// session cookie or as a bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blog-platform/internal/config"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/repository"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "sessionid"

	// LoginURL is where anonymous users are sent.
	LoginURL = "/accounts/login"
)

var (
	// ErrNoSession means the request carries no session token at all.
	ErrNoSession = errors.New("no session")

	// ErrInvalidSession covers bad signatures, expired or revoked sessions and inactive users.
	ErrInvalidSession = errors.New("invalid session")
)

// Sessions establishes, resolves and destroys login sessions.
type Sessions struct {
	store  repository.SessionRepository
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessions creates a session manager over store. cfg.Secret signs the tokens.
func NewSessions(store repository.SessionRepository, users repository.UserRepository, cfg config.SessionConfig) *Sessions {
	return &Sessions{
		store:  store,
		users:  users,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		secure: cfg.CookieSecure,
		now:    time.Now,
	}
}

// Establish starts a session for user, sets the session cookie and rotates
// the CSRF cookie. It returns the signed token for API clients.
func (s *Sessions) Establish(ctx context.Context, w http.ResponseWriter, user *entity.User) (string, error) {
	sess := entity.NewSession(user.ID, s.now(), s.ttl)
	if err := s.store.Create(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	token, err := s.sign(sess)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	setCSRFCookie(w, newCSRFToken(), s.secure)
	RecordSessionEvent("established")
	return token, nil
}

// Destroy revokes the session of the request, if any, and clears the cookie.
func (s *Sessions) Destroy(ctx context.Context, w http.ResponseWriter) error {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	sess, ok := SessionFromContext(ctx)
	if !ok {
		return nil
	}
	if err := s.store.Revoke(ctx, sess.ID, s.now()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	RecordSessionEvent("revoked")
	return nil
}

// Resolve returns the user and session named by the request token.
func (s *Sessions) Resolve(ctx context.Context, r *http.Request) (*entity.User, *entity.Session, error) {
	token, _ := tokenFromRequest(r)
	if token == "" {
		return nil, nil, ErrNoSession
	}

	sid, err := s.parse(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil || !sess.IsValid(s.now()) {
		return nil, nil, fmt.Errorf("%w: session expired or revoked", ErrInvalidSession)
	}

	user, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get session user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, nil, fmt.Errorf("%w: user unavailable", ErrInvalidSession)
	}
	return user, sess, nil
}

func (s *Sessions) sign(sess *entity.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sess.ID,
		"sub": strconv.FormatInt(sess.UserID, 10),
		"iat": sess.CreatedAt.Unix(),
		"exp": sess.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *Sessions) parse(tokenString string) (string, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("invalid sid claim")
	}
	return sid, nil
}

// tokenFromRequest prefers the Authorization header; bearer reports whether it was used.
func tokenFromRequest(r *http.Request) (token string, bearer bool) {
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
		return strings.TrimPrefix(h, prefix), true
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value, false
	}
	return "", false
}

type sessionKey struct{}

// WithSession returns a context carrying sess.
func WithSession(ctx context.Context, sess *entity.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session resolved for the request.
func SessionFromContext(ctx context.Context) (*entity.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*entity.Session)
	return s, ok && s != nil
}
