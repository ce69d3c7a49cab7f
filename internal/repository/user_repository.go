package repository

import (
	"context"
	"time"

	"blog-platform/internal/domain/entity"
)

// UserRepository persists accounts. Create returns entity.ErrConflict when the
// username is taken.
type UserRepository interface {
	Get(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	// Update writes the profile fields (names and email).
	Update(ctx context.Context, user *entity.User) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	Activate(ctx context.Context, id int64) error
	// DeleteInactiveBefore removes accounts that joined before t, never
	// activated and hold no activation token issued since t. It returns how
	// many were removed.
	DeleteInactiveBefore(ctx context.Context, t time.Time) (int64, error)
}

// TokenRepository persists activation tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *entity.ActivationToken) error
	GetByToken(ctx context.Context, token string) (*entity.ActivationToken, error)
	Delete(ctx context.Context, id int64) error
	// DeleteCreatedBefore removes tokens issued before t and returns how many were removed.
	DeleteCreatedBefore(ctx context.Context, t time.Time) (int64, error)
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	// DeleteExpired removes sessions that expired or were revoked before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
