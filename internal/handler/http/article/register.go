package article

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	artUC "blog-platform/internal/usecase/article"
	crudUC "blog-platform/internal/usecase/crud"
)

// Service is the article usecase surface the handlers drive.
type Service interface {
	Index(ctx context.Context, params pagination.Params) (*artUC.IndexResult, error)
	Search(ctx context.Context, values url.Values) (*artUC.SearchResult, error)
	Detail(ctx context.Context, id int64, params pagination.Params) (*artUC.DetailResult, error)
	Create(ctx context.Context, values url.Values) (*entity.Article, error)
	Update(ctx context.Context, id int64, values url.Values) (*entity.Article, error)
	Delete(ctx context.Context, id int64, confirmed bool) (crudUC.DeleteResult[entity.Article], error)
}

// CommentService adds comments under an article.
type CommentService interface {
	CreateForArticle(ctx context.Context, articleID int64, values url.Values) (*entity.Comment, error)
}

// Register registers all article-related HTTP handlers with the given mux.
// Writes are checked by the usecase: anonymous requests get 401 with the
// login URL and requests by anyone but the author get 403.
func Register(mux *http.ServeMux, svc Service, comments CommentService, logger *slog.Logger) {
	mux.Handle("GET /articles", IndexHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /articles/search", SearchHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /articles/{id}", DetailHandler{Svc: svc})

	mux.Handle("POST /articles", CreateHandler{Svc: svc})
	mux.Handle("PUT /articles/{id}", UpdateHandler{Svc: svc})

	del := DeleteHandler{Svc: svc}
	mux.Handle("GET /articles/{id}/delete", del)
	mux.Handle("POST /articles/{id}/delete", del)
	mux.Handle("DELETE /articles/{id}", del)

	mux.Handle("POST /articles/{id}/comments", CommentCreateHandler{Comments: comments})
}
