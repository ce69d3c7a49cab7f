// Package account implements registration with e-mail activation, login,
// profile viewing and editing, and password changes.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	"blog-platform/internal/observability/metrics"
	"blog-platform/internal/repository"
	"blog-platform/internal/service/auth"
	"blog-platform/internal/usecase/crud"
	"blog-platform/internal/usecase/mail"
)

// ActivationPath is the path of the activation link sent by mail.
const ActivationPath = "/accounts/register/activate"

var (
	// ErrUserNotFound indicates that no user has the requested id.
	ErrUserNotFound = fmt.Errorf("user: %w", entity.ErrNotFound)

	// ErrTokenNotFound indicates an unknown or already consumed activation token.
	ErrTokenNotFound = fmt.Errorf("activation token: %w", entity.ErrNotFound)
)

// Service provides account use cases.
type Service struct {
	Users    repository.UserRepository
	Tokens   repository.TokenRepository
	Articles repository.ArticleRepository
	Tx       repository.TxManager
	Hasher   auth.PasswordHasher
	Auth     *auth.AuthService
	Mailer   mail.Sender
	HostName string
	Now      func() time.Time
}

// Profile is a user together with the number of articles they wrote.
type Profile struct {
	User         *entity.User
	ArticleCount int64
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.Tx == nil {
		return fn(ctx)
	}
	return s.Tx.WithinTx(ctx, fn)
}

/* ─── 1. Registration ─── */

// Register creates an inactive user with a fresh activation token and sends
// the activation link by mail. A taken username is reported as *form.Invalid.
func (s *Service) Register(ctx context.Context, values url.Values) (*entity.User, error) {
	f := form.NewRegister(values)
	if err := f.Clean(); err != nil {
		return nil, err
	}

	existing, err := s.Users.GetByUsername(ctx, f.Username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return nil, f.Invalid("username", "unique", "a user with that username already exists")
	}

	hash, err := s.Hasher.Hash(f.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := f.Build()
	user.PasswordHash = hash
	user.DateJoined = s.now()

	var token *entity.ActivationToken
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.Users.Create(ctx, user); err != nil {
			return err
		}
		token = entity.NewActivationToken(user.ID, user.DateJoined)
		return s.Tokens.Create(ctx, token)
	})
	if errors.Is(err, entity.ErrConflict) {
		return nil, f.Invalid("username", "unique", "a user with that username already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	metrics.RecordRegistration()

	// 送信は非同期。失敗してもユーザー作成は巻き戻さない
	if err := s.Mailer.Send(ctx, s.activationMail(user, token)); err != nil {
		slog.Warn("Activation mail not dispatched",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err))
	}
	return user, nil
}

func (s *Service) activationMail(user *entity.User, token *entity.ActivationToken) mail.Message {
	link := strings.TrimRight(s.HostName, "/") + ActivationPath + "?" + url.Values{"token": {token.Token}}.Encode()
	name := user.FullName()
	if name == "" {
		name = user.Username
	}
	return mail.Message{
		To:      user.Email,
		Subject: "Activate your account",
		Body:    fmt.Sprintf("Hi %s,\n\nplease activate your account by opening the link below:\n\n%s\n", name, link),
	}
}

// Activate consumes token, activates its user and returns them. The token
// can be used only once.
func (s *Service) Activate(ctx context.Context, token string) (*entity.User, error) {
	tok, err := s.Tokens.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("activate: %w", err)
	}
	if tok == nil {
		metrics.RecordActivation(false)
		return nil, ErrTokenNotFound
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.Users.Activate(ctx, tok.UserID); err != nil {
			return err
		}
		// 同じトークンで並行して有効化された場合、削除は負けた側で NotFound になる
		if err := s.Tokens.Delete(ctx, tok.ID); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		return nil
	})
	if errors.Is(err, ErrTokenNotFound) {
		metrics.RecordActivation(false)
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("activate: %w", err)
	}

	user, err := s.Users.Get(ctx, tok.UserID)
	if err != nil {
		return nil, fmt.Errorf("activate: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	metrics.RecordActivation(true)
	return user, nil
}

/* ─── 2. Login ─── */

// Login checks the login form against the auth provider. Bad credentials
// and inactive users are reported as auth.ErrInvalidCredentials and
// auth.ErrInactiveUser.
func (s *Service) Login(ctx context.Context, values url.Values) (*entity.User, error) {
	f := form.NewLogin(values)
	if err := f.Clean(); err != nil {
		metrics.RecordLogin("invalid")
		return nil, err
	}

	user, err := s.Auth.Login(ctx, auth.Credentials{Username: f.Username, Password: f.Password})
	switch {
	case err == nil:
		metrics.RecordLogin("success")
		return user, nil
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.RecordLogin("invalid")
	case errors.Is(err, auth.ErrInactiveUser):
		metrics.RecordLogin("inactive")
	default:
		metrics.RecordLogin("error")
	}
	return nil, err
}

/* ─── 3. Profile ─── */

// Profile returns user id and their article count.
func (s *Service) Profile(ctx context.Context, id int64) (*Profile, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.Articles.CountByAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	return &Profile{User: user, ArticleCount: count}, nil
}

// UpdateProfile overwrites names and email of user id. Only the user
// themselves may do so.
func (s *Service) UpdateProfile(ctx context.Context, id int64, values url.Values) (*entity.User, error) {
	if err := owner(ctx, id); err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	f := form.NewProfile(values)
	if err := f.Clean(); err != nil {
		return nil, err
	}
	f.ApplyTo(user)
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password of user id after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, id int64, values url.Values) error {
	if err := owner(ctx, id); err != nil {
		return err
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}

	f := form.NewPassword(values)
	if err := f.Clean(); err != nil {
		return err
	}
	if err := s.Hasher.Compare(user.PasswordHash, f.OldPassword); err != nil {
		return f.Invalid("old_password", "password_incorrect", "your old password was entered incorrectly")
	}

	hash, err := s.Hasher.Hash(f.Password)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.Users.SetPassword(ctx, id, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *Service) getUser(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func owner(ctx context.Context, id int64) error {
	uid := auth.UserID(ctx)
	if uid == 0 {
		return crud.ErrUnauthenticated
	}
	if uid != id {
		return crud.ErrForbidden
	}
	return nil
}
