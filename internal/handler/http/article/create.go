package article

import (
	"net/http"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/crud"
)

// CreateHandler creates an article authored by the logged in user.
type CreateHandler struct{ Svc Service }

// ServeHTTP 記事作成
// @Summary      記事作成
// @Description  新しい記事を作成します。tags はカンマ区切りで、存在しないタグは作成されます。
// @Tags         articles
// @Security     BearerAuth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        title        formData  string  true   "タイトル (10文字超)"
// @Param        text         formData  string  false  "本文 (タイトルと同一不可)"
// @Param        category_id  formData  int     false  "カテゴリID"
// @Param        tags         formData  string  false  "タグ (カンマ区切り)"
// @Success      201 {object} DTO "作成された記事"
// @Failure      400 {object} respond.InvalidBody "Bad request - invalid input"
// @Failure      401 {string} string "Login required"
// @Failure      403 {string} string "CSRF token missing or invalid"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	crud.CreateHandler[entity.Article, DTO]{Svc: h.Svc, ToDTO: ToDTO}.ServeHTTP(w, r)
}
