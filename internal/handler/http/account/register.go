package account

import (
	"context"
	"net/http"
	"net/url"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/auth"
	accountUC "blog-platform/internal/usecase/account"
)

// Service is the account usecase surface the handlers drive.
type Service interface {
	Register(ctx context.Context, values url.Values) (*entity.User, error)
	Activate(ctx context.Context, token string) (*entity.User, error)
	Login(ctx context.Context, values url.Values) (*entity.User, error)
	Profile(ctx context.Context, id int64) (*accountUC.Profile, error)
	UpdateProfile(ctx context.Context, id int64, values url.Values) (*entity.User, error)
	ChangePassword(ctx context.Context, id int64, values url.Values) error
}

// SessionManager starts and ends login sessions. *auth.Sessions implements it.
type SessionManager interface {
	Establish(ctx context.Context, w http.ResponseWriter, user *entity.User) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter) error
}

// Register registers the account routes with the given mux. loginLimit
// throttles login attempts; nil disables it.
func Register(mux *http.ServeMux, svc Service, sessions SessionManager, loginLimit func(http.Handler) http.Handler) {
	var login http.Handler = LoginHandler{Svc: svc, Sessions: sessions}
	if loginLimit != nil {
		login = loginLimit(login)
	}

	mux.Handle("POST /accounts/register", RegisterHandler{Svc: svc})
	mux.Handle("GET "+accountUC.ActivationPath, ActivateHandler{Svc: svc, Sessions: sessions})
	mux.Handle("POST "+auth.LoginURL, login)
	mux.Handle("POST /accounts/logout", auth.RequireLogin(LogoutHandler{Sessions: sessions}))

	mux.Handle("GET /accounts/users/{id}", ProfileHandler{Svc: svc})
	mux.Handle("PUT /accounts/users/{id}", ProfileUpdateHandler{Svc: svc})
	mux.Handle("POST /accounts/users/{id}/password", PasswordChangeHandler{Svc: svc, Sessions: sessions})
}
