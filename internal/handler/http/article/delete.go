package article

import (
	"net/http"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/crud"
)

// DeleteHandler archives an article. GET only asks for confirmation.
type DeleteHandler struct{ Svc Service }

// ServeHTTP 記事アーカイブ
// @Summary      記事アーカイブ
// @Description  GET は確認用に記事を返すだけで変更しません。POST /articles/{id}/delete または DELETE /articles/{id} で記事をアーカイブします（物理削除はしません）。
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "記事ID"
// @Success      200 {object} crud.DeletePreview[DTO] "確認"
// @Success      204 "Archived"
// @Failure      400 {string} string "Bad request - invalid ID"
// @Failure      401 {string} string "Login required"
// @Failure      403 {string} string "Forbidden - not the author"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id}/delete [get]
// @Router       /articles/{id}/delete [post]
// @Router       /articles/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	crud.DeleteHandler[entity.Article, DTO]{Svc: h.Svc, ToDTO: ToDTO}.ServeHTTP(w, r)
}
