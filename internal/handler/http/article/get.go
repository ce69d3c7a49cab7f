package article

import (
	"net/http"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/handler/http/comment"
	"blog-platform/internal/handler/http/crud"
	"blog-platform/internal/handler/http/pathutil"
	"blog-platform/internal/handler/http/respond"
)

// DetailHandler serves one article with its comments.
type DetailHandler struct{ Svc Service }

// ServeHTTP 記事詳細取得
// @Summary      記事詳細取得
// @Description  指定されたIDの記事を、タグ・カテゴリ・コメント（新しい順に3件ずつ）と共に返します。アーカイブ済みの記事も取得できます。
// @Tags         articles
// @Produce      json
// @Param        id    path   int     true   "記事ID"
// @Param        page  query  string  false  "コメントのページ番号 (1-based) または last"
// @Success      200 {object} DetailResponse "記事詳細"
// @Failure      400 {string} string "Bad request - invalid article ID"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id} [get]
func (h DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	params, err := pagination.ParseQueryParams(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Svc.Detail(r.Context(), id, params)
	if err != nil {
		crud.WriteError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, DetailResponse{
		Article:  ToDTO(res.Article),
		Comments: pagination.Map(res.Comments, comment.ToDTO),
	})
}
