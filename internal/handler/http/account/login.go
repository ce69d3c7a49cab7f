package account

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"blog-platform/internal/form"
	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/handler/http/respond"
	authservice "blog-platform/internal/service/auth"
)

// LoginHandler checks credentials and starts a session.
type LoginHandler struct {
	Svc      Service
	Sessions SessionManager
}

// ServeHTTP ログイン
// @Summary      ログイン
// @Description  認証に成功するとセッションCookieを設定し、next（同一サイトの相対パスのみ）または / にリダイレクトします。
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true   "ユーザー名"
// @Param        password  formData  string  true   "パスワード"
// @Param        next      formData  string  false  "ログイン後の遷移先"
// @Success      303 {object} LoginResponse "Redirect"
// @Failure      401 {object} loginFailed "Invalid credentials or inactive user"
// @Failure      429 {string} string "Too many requests - rate limit exceeded" headers(Retry-After=integer)
// @Failure      500 {string} string "サーバーエラー"
// @Router       /accounts/login [post]
func (h LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	values, err := form.Decode(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := h.Svc.Login(r.Context(), values)
	if err != nil {
		if isLoginFailure(err) {
			slog.Info("login failed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("reason", err.Error()))
			respond.JSON(w, http.StatusUnauthorized, loginFailed{HasError: true})
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	token, err := h.Sessions.Establish(r.Context(), w, user)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	next := SafeNext(values.Get("next"))
	w.Header().Set("Location", next)
	respond.JSON(w, http.StatusSeeOther, LoginResponse{Token: token, Location: next})
}

func isLoginFailure(err error) bool {
	if _, ok := form.AsInvalid(err); ok {
		return true
	}
	return errors.Is(err, authservice.ErrInvalidCredentials) || errors.Is(err, authservice.ErrInactiveUser)
}

// SafeNext returns next when it is a path on this site, and "/" otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

// LogoutHandler ends the session of the request.
type LogoutHandler struct{ Sessions SessionManager }

// ServeHTTP ログアウト
// @Summary      ログアウト
// @Description  セッションを失効させ / にリダイレクトします。
// @Tags         accounts
// @Security     BearerAuth
// @Success      303 "Redirect to /"
// @Failure      401 {string} string "Login required"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /accounts/logout [post]
func (h LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context(), w); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
