package account

import (
	"errors"
	"log/slog"
	"net/http"

	"blog-platform/internal/form"
	"blog-platform/internal/handler/http/crud"
	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/handler/http/respond"
	accountUC "blog-platform/internal/usecase/account"
)

// RegisterHandler signs up a new, inactive user.
type RegisterHandler struct{ Svc Service }

// ServeHTTP ユーザー登録
// @Summary      ユーザー登録
// @Description  無効状態のユーザーを作成し、有効化リンクをメールで送信します。
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        username          formData  string  true   "ユーザー名 (150文字以内、英数字と @.+-_)"
// @Param        email             formData  string  true   "メールアドレス"
// @Param        password          formData  string  true   "パスワード"
// @Param        password_confirm  formData  string  true   "パスワード（確認）"
// @Param        first_name        formData  string  false  "名"
// @Param        last_name         formData  string  false  "姓"
// @Success      201 {object} UserDTO "作成されたユーザー"
// @Failure      400 {object} respond.InvalidBody "Bad request - invalid input"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /accounts/register [post]
func (h RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	values, err := form.Decode(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := h.Svc.Register(r.Context(), values)
	if err != nil {
		crud.WriteError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, ToUserDTO(user))
}

// ActivateHandler consumes an activation token and logs the user in.
type ActivateHandler struct {
	Svc      Service
	Sessions SessionManager
}

// ServeHTTP アカウント有効化
// @Summary      アカウント有効化
// @Description  トークンに対応するユーザーを有効化し、ログインした状態で / にリダイレクトします。
// @Description  不明なトークンでも / にリダイレクトします。
// @Tags         accounts
// @Param        token query string true "有効化トークン"
// @Success      303 "Redirect to /"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /accounts/register/activate [get]
func (h ActivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := h.Svc.Activate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, accountUC.ErrTokenNotFound) {
			slog.Warn("unknown activation token",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("remote_addr", r.RemoteAddr))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		crud.WriteError(w, r, err)
		return
	}

	if _, err := h.Sessions.Establish(r.Context(), w, user); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	slog.Info("account activated",
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.Int64("user_id", user.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
