package account

import (
	"net/http"

	"blog-platform/internal/form"
	"blog-platform/internal/handler/http/auth"
	"blog-platform/internal/handler/http/crud"
	"blog-platform/internal/handler/http/pathutil"
	"blog-platform/internal/handler/http/respond"
	authservice "blog-platform/internal/service/auth"
)

// ProfileHandler shows a user profile.
type ProfileHandler struct{ Svc Service }

// ServeHTTP プロフィール取得
// @Summary      プロフィール取得
// @Tags         accounts
// @Produce      json
// @Param        id path int true "ユーザーID"
// @Success      200 {object} ProfileDTO "プロフィール"
// @Failure      400 {string} string "Bad request - invalid ID"
// @Failure      404 {string} string "Not found - user not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /accounts/users/{id} [get]
func (h ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.Svc.Profile(r.Context(), id)
	if err != nil {
		crud.WriteError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toProfileDTO(p))
}

// ProfileUpdateHandler edits the profile of the logged in user.
type ProfileUpdateHandler struct{ Svc Service }

// ServeHTTP プロフィール更新
// @Summary      プロフィール更新
// @Tags         accounts
// @Security     BearerAuth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id          path      int     true   "ユーザーID"
// @Param        first_name  formData  string  false  "名"
// @Param        last_name   formData  string  false  "姓"
// @Param        email       formData  string  true   "メールアドレス"
// @Success      200 {object} UserDTO "更新されたユーザー"
// @Failure      400 {object} respond.InvalidBody "Bad request - invalid input"
// @Failure      401 {string} string "Login required"
// @Failure      403 {string} string "Forbidden - not your profile"
// @Failure      404 {string} string "Not found - user not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /accounts/users/{id} [put]
func (h ProfileUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	values, err := form.Decode(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := h.Svc.UpdateProfile(r.Context(), id, values)
	if err != nil {
		crud.WriteError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, ToUserDTO(user))
}

// PasswordChangeHandler replaces the password of the logged in user and
// rotates their session.
type PasswordChangeHandler struct {
	Svc      Service
	Sessions SessionManager
}

// ServeHTTP パスワード変更
// @Summary      パスワード変更
// @Description  現在のセッションを失効させて新しいセッションを発行し、/accounts/login にリダイレクトします。
// @Tags         accounts
// @Security     BearerAuth
// @Accept       json,x-www-form-urlencoded
// @Param        id                path      int     true  "ユーザーID"
// @Param        old_password      formData  string  true  "現在のパスワード"
// @Param        password          formData  string  true  "新しいパスワード"
// @Param        password_confirm  formData  string  true  "新しいパスワード（確認）"
// @Success      303 "Redirect to /accounts/login"
// @Failure      400 {object} respond.InvalidBody "Bad request - invalid input"
// @Failure      401 {string} string "Login required"
// @Failure      403 {string} string "Forbidden - not your account"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /accounts/users/{id}/password [post]
func (h PasswordChangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	values, err := form.Decode(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.ChangePassword(r.Context(), id, values); err != nil {
		crud.WriteError(w, r, err)
		return
	}

	// ChangePassword succeeded, so the request has a user
	user, _ := authservice.UserFromContext(r.Context())
	if err := h.Sessions.Destroy(r.Context(), w); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if _, err := h.Sessions.Establish(r.Context(), w, user); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	http.Redirect(w, r, auth.LoginURL, http.StatusSeeOther)
}
