package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/repository"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, is_active, date_joined`

type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) repository.UserRepository {
	return &UserRepo{db: db}
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	return repo.getBy(ctx, "Get", "id", id)
}

func (repo *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return repo.getBy(ctx, "GetByUsername", "username", username)
}

func (repo *UserRepo) getBy(ctx context.Context, op, col string, v interface{}) (*entity.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + col + " = $1"
	var u entity.User
	err := conn(ctx, repo.db).QueryRowContext(ctx, query, v).Scan(&u.ID, &u.Username, &u.Email,
		&u.FirstName, &u.LastName, &u.PasswordHash, &u.IsActive, &u.DateJoined)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	const query = `
INSERT INTO users (username, email, first_name, last_name, password_hash, is_active, date_joined)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := conn(ctx, repo.db).QueryRowContext(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.IsActive, user.DateJoined,
	).Scan(&user.ID)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *UserRepo) Update(ctx context.Context, user *entity.User) error {
	const query = `UPDATE users SET first_name = $1, last_name = $2, email = $3 WHERE id = $4`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, user.FirstName, user.LastName, user.Email, user.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return expectOneRow("Update", res)
}

func (repo *UserRepo) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $1 WHERE id = $2`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("SetPassword: %w", err)
	}
	return expectOneRow("SetPassword", res)
}

func (repo *UserRepo) Activate(ctx context.Context, id int64) error {
	const query = `UPDATE users SET is_active = TRUE WHERE id = $1`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Activate: %w", err)
	}
	return expectOneRow("Activate", res)
}

// DeleteInactiveBefore frees the usernames of registrations that were never
// activated. Their tokens go with them through ON DELETE CASCADE.
func (repo *UserRepo) DeleteInactiveBefore(ctx context.Context, t time.Time) (int64, error) {
	const query = `
DELETE FROM users u
WHERE u.is_active = FALSE
  AND u.date_joined < $1
  AND NOT EXISTS (SELECT 1 FROM activation_tokens t WHERE t.user_id = u.id AND t.created_at >= $1)
  AND NOT EXISTS (SELECT 1 FROM articles a WHERE a.author_id = u.id)`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, t)
	if err != nil {
		return 0, fmt.Errorf("DeleteInactiveBefore: %w", err)
	}
	return res.RowsAffected()
}

type TokenRepo struct {
	db DBTX
}

func NewTokenRepo(db DBTX) repository.TokenRepository {
	return &TokenRepo{db: db}
}

func (repo *TokenRepo) Create(ctx context.Context, token *entity.ActivationToken) error {
	const query = `
INSERT INTO activation_tokens (token, user_id, created_at)
VALUES ($1, $2, $3)
RETURNING id`
	err := conn(ctx, repo.db).QueryRowContext(ctx, query, token.Token, token.UserID, token.CreatedAt).Scan(&token.ID)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *TokenRepo) GetByToken(ctx context.Context, token string) (*entity.ActivationToken, error) {
	const query = `SELECT id, token, user_id, created_at FROM activation_tokens WHERE token = $1`
	var t entity.ActivationToken
	err := conn(ctx, repo.db).QueryRowContext(ctx, query, token).Scan(&t.ID, &t.Token, &t.UserID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByToken: %w", err)
	}
	return &t, nil
}

func (repo *TokenRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM activation_tokens WHERE id = $1`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return expectOneRow("Delete", res)
}

func (repo *TokenRepo) DeleteCreatedBefore(ctx context.Context, t time.Time) (int64, error) {
	const query = `DELETE FROM activation_tokens WHERE created_at < $1`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, t)
	if err != nil {
		return 0, fmt.Errorf("DeleteCreatedBefore: %w", err)
	}
	return res.RowsAffected()
}

type SessionRepo struct {
	db DBTX
}

func NewSessionRepo(db DBTX) repository.SessionRepository {
	return &SessionRepo{db: db}
}

func (repo *SessionRepo) Create(ctx context.Context, s *entity.Session) error {
	const query = `
INSERT INTO sessions (id, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4)`
	if _, err := conn(ctx, repo.db).ExecContext(ctx, query, s.ID, s.UserID, s.CreatedAt, s.ExpiresAt); err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *SessionRepo) Get(ctx context.Context, id string) (*entity.Session, error) {
	const query = `SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = $1`
	var (
		s       entity.Session
		revoked sql.NullTime
	)
	err := conn(ctx, repo.db).QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revoked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if revoked.Valid {
		s.RevokedAt = &revoked.Time
	}
	return &s, nil
}

func (repo *SessionRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE sessions SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`
	if _, err := conn(ctx, repo.db).ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("Revoke: %w", err)
	}
	return nil
}

func (repo *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1 OR revoked_at <= $1`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: %w", err)
	}
	return res.RowsAffected()
}
