package article

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/handler/http/crud"
	"blog-platform/internal/handler/http/respond"
)

// SearchTimeout bounds the queries of one full search.
const SearchTimeout = 5 * time.Second

// SearchHandler serves the full search.
type SearchHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP 記事検索
// @Summary      記事検索
// @Description  テキストと著者で全ステータスの記事を検索します。
// @Description  text はチェックした範囲（タイトル・本文・タグ・コメント本文）のいずれかに一致、
// @Description  author はチェックした範囲（記事の著者・コメントの投稿者）のいずれかに完全一致します。両方指定した場合は AND です。
// @Tags         articles
// @Produce      json
// @Param        text             query  string  false  "検索テキスト (最大100文字)"
// @Param        in_title         query  bool    false  "タイトルを検索"
// @Param        in_text          query  bool    false  "本文を検索"
// @Param        in_tags          query  bool    false  "タグ名を検索"
// @Param        in_comment_text  query  bool    false  "コメント本文を検索"
// @Param        author           query  string  false  "著者名 (最大100文字)"
// @Param        article_author   query  bool    false  "記事の著者で検索"
// @Param        comment_author   query  bool    false  "コメント投稿者で検索"
// @Param        page             query  string  false  "ページ番号 (1-based) または last"
// @Success      200 {object} SearchResponse "検索結果"
// @Failure      400 {object} respond.InvalidBody "Invalid search criteria"
// @Failure      404 {string} string "Page out of range"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles/search [get]
func (h SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), SearchTimeout)
	defer cancel()
	r = r.WithContext(ctx)

	values := r.URL.Query()
	params, _ := pagination.ParseValues(values)
	obs := crud.StartListing(r, "search", h.Logger, params)

	res, err := h.Svc.Search(ctx, values)
	if err != nil {
		obs.Fail(w, err)
		return
	}
	obs.Done(res.Page.Metadata, len(res.Page.Items))

	respond.JSON(w, http.StatusOK, SearchResponse{
		Criteria: res.Criteria,
		Results:  pagination.Map(res.Page, ToDTO),
	})
}
