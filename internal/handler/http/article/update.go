package article

import (
	"net/http"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/crud"
)

// UpdateHandler overwrites an article. Only its author may update it.
type UpdateHandler struct{ Svc Service }

// ServeHTTP 記事更新
// @Summary      記事更新
// @Description  記事を更新します。タグは送信された内容で置き換えられます。
// @Tags         articles
// @Security     BearerAuth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id           path      int     true   "記事ID"
// @Param        title        formData  string  true   "タイトル (10文字超)"
// @Param        text         formData  string  false  "本文"
// @Param        category_id  formData  int     false  "カテゴリID"
// @Param        tags         formData  string  false  "タグ (カンマ区切り)"
// @Success      200 {object} DTO "更新された記事"
// @Failure      400 {object} respond.InvalidBody "Bad request - invalid input"
// @Failure      401 {string} string "Login required"
// @Failure      403 {string} string "Forbidden - not the author"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	crud.UpdateHandler[entity.Article, DTO]{Svc: h.Svc, ToDTO: ToDTO}.ServeHTTP(w, r)
}
