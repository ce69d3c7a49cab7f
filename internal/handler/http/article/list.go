package article

import (
	"log/slog"
	"net/http"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/handler/http/crud"
	"blog-platform/internal/handler/http/respond"
)

// IndexHandler serves the article index.
type IndexHandler struct {
	Svc    Service
	Logger *slog.Logger
}

// ServeHTTP 記事一覧取得
// @Summary      記事一覧取得（ページネーション対応）
// @Description  公開中の記事を新しい順に5件ずつ返します（最終ページが1件以下なら前ページに含めます）。
// @Description  search を指定するとタイトル部分一致またはタグ名完全一致で絞り込みます。アーカイブ済み記事は archived に全件含まれます。
// @Tags         articles
// @Produce      json
// @Param        page    query    string  false  "ページ番号 (1-based) または last" default(1)
// @Param        search  query    string  false  "簡易検索 (100文字を超える場合は無視)"
// @Success      200 {object} IndexResponse "記事一覧"
// @Failure      400 {object} respond.InvalidBody "Invalid query parameters"
// @Failure      404 {string} string "Page out of range"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /articles [get]
func (h IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r)
	if err != nil {
		pagination.RecordError("index", "validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	obs := crud.StartListing(r, "index", h.Logger, params)
	res, err := h.Svc.Index(r.Context(), params)
	if err != nil {
		obs.Fail(w, err)
		return
	}
	obs.Done(res.Active.Metadata, len(res.Active.Items))

	respond.JSON(w, http.StatusOK, IndexResponse{
		Search:   res.Search,
		Articles: pagination.Map(res.Active, ToDTO),
		Archived: toDTOs(res.Archived),
	})
}
