package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Users are created inactive and become
// active once they consume their activation token.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	DateJoined   time.Time
}

// FullName returns "first last" with blanks collapsed.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ActivationToken links a one-time token value to an inactive user.
type ActivationToken struct {
	ID        int64
	Token     string
	UserID    int64
	CreatedAt time.Time
}

// NewActivationToken issues a fresh random token for userID.
func NewActivationToken(userID int64, now time.Time) *ActivationToken {
	return &ActivationToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
	}
}

// Session is a server side login record. The session cookie names it by ID.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// NewSession starts a session for userID lasting ttl.
func NewSession(userID int64, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsValid reports whether the session can still authenticate requests at now.
func (s *Session) IsValid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
