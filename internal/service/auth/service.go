// Package auth verifies account credentials and carries the acting user
// through request contexts. It does not depend on any HTTP framework.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveUser is returned for a correct password of a user who has
	// not activated the account yet.
	ErrInactiveUser = errors.New("user is not active")
)

// Credentials represents authentication credentials.
type Credentials struct {
	Username string
	Password string
}

// PasswordHasher hashes and checks passwords. Compare returns a non-nil
// error for a wrong password.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthProvider defines the interface for authentication providers.
type AuthProvider interface {
	// Authenticate returns the user owning creds.
	Authenticate(ctx context.Context, creds Credentials) (*entity.User, error)

	// Name returns the name of this provider.
	Name() string
}

// DatabaseProvider authenticates against the users table.
type DatabaseProvider struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

// NewDatabaseProvider creates a provider over users.
func NewDatabaseProvider(users repository.UserRepository, hasher PasswordHasher) *DatabaseProvider {
	return &DatabaseProvider{users: users, hasher: hasher}
}

// Name implements AuthProvider.
func (p *DatabaseProvider) Name() string { return "database" }

// Authenticate implements AuthProvider.
func (p *DatabaseProvider) Authenticate(ctx context.Context, creds Credentials) (*entity.User, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := p.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, fmt.Errorf("Authenticate: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := p.hasher.Compare(user.PasswordHash, creds.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// AuthService handles authentication business logic.
type AuthService struct {
	provider AuthProvider
}

// NewAuthService creates a new authentication service.
func NewAuthService(provider AuthProvider) *AuthService {
	return &AuthService{provider: provider}
}

// Login authenticates creds via the configured provider.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*entity.User, error) {
	return s.provider.Authenticate(ctx, creds)
}

// GetProvider returns the current authentication provider.
func (s *AuthService) GetProvider() AuthProvider {
	return s.provider
}

type userKey struct{}

// WithUser returns a context carrying the acting user.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the acting user, if any.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(userKey{}).(*entity.User)
	return u, ok && u != nil
}

// UserID returns the id of the acting user, or 0 for anonymous requests.
func UserID(ctx context.Context) int64 {
	if u, ok := UserFromContext(ctx); ok {
		return u.ID
	}
	return 0
}
