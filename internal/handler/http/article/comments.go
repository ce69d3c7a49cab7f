package article

import (
	"net/http"

	"blog-platform/internal/form"
	"blog-platform/internal/handler/http/comment"
	"blog-platform/internal/handler/http/crud"
	"blog-platform/internal/handler/http/pathutil"
	"blog-platform/internal/handler/http/respond"
)

// CommentCreateHandler adds a comment to an active article.
type CommentCreateHandler struct{ Comments CommentService }

// ServeHTTP 記事へのコメント投稿
// @Summary      記事へのコメント投稿
// @Description  公開中の記事にコメントを追加します。ログイン中で author が空の場合はユーザー名が使われます。
// @Tags         articles
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id      path      int     true   "記事ID"
// @Param        author  formData  string  false  "投稿者名"
// @Param        text    formData  string  true   "本文"
// @Success      201 {object} comment.DTO "作成されたコメント"
// @Failure      400 {object} respond.InvalidBody "Bad request - invalid input or archived article"
// @Failure      404 {string} string "Not found - article not found"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/{id}/comments [post]
func (h CommentCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	c, err := h.Comments.CreateForArticle(r.Context(), id, values)
	if err != nil {
		crud.WriteError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, comment.ToDTO(c))
}
