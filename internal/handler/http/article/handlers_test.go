package article

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	"blog-platform/internal/handler/http/comment"
	"blog-platform/internal/pkg/search"
	artUC "blog-platform/internal/usecase/article"
	commentUC "blog-platform/internal/usecase/comment"
	crudUC "blog-platform/internal/usecase/crud"
)

/* ───────── スタブ実装 ───────── */

var created = time.Date(2025, 10, 26, 12, 0, 0, 0, time.UTC)

func sampleArticle(id int64, status entity.ArticleStatus) *entity.Article {
	cat := int64(2)
	return &entity.Article{
		ID:         id,
		Title:      fmt.Sprintf("Article number %d", id),
		Text:       "body",
		AuthorID:   7,
		AuthorName: "alice",
		CategoryID: &cat,
		Category:   &entity.Category{ID: 2, Name: "golang"},
		Status:     status,
		Tags:       []entity.Tag{{ID: 1, Name: "go"}},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

type stubService struct {
	err       error
	lastQuery url.Values
	deleted   []int64
}

func (s *stubService) Index(_ context.Context, params pagination.Params) (*artUC.IndexResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &artUC.IndexResult{
		Search: params.Query.Get(artUC.SearchParam),
		Active: pagination.Page[*entity.Article]{
			Items:    []*entity.Article{sampleArticle(2, entity.StatusActive)},
			Metadata: pagination.Metadata{Total: 1, Page: 1, Limit: 5, TotalPages: 1, Query: params.Query.Encode()},
		},
		Archived: []*entity.Article{sampleArticle(1, entity.StatusArchived)},
	}, nil
}

func (s *stubService) Search(_ context.Context, values url.Values) (*artUC.SearchResult, error) {
	s.lastQuery = values
	criteria := search.ParseCriteria(values)
	if err := criteria.Validate(values); err != nil {
		return nil, err
	}
	return &artUC.SearchResult{
		Criteria: criteria,
		Page: pagination.Page[*entity.Article]{
			Items:    []*entity.Article{sampleArticle(1, entity.StatusArchived)},
			Metadata: pagination.Metadata{Total: 1, Page: 1, Limit: 5, TotalPages: 1},
		},
	}, nil
}

func (s *stubService) Detail(_ context.Context, id int64, params pagination.Params) (*artUC.DetailResult, error) {
	if id != 1 {
		return nil, artUC.ErrArticleNotFound
	}
	return &artUC.DetailResult{
		Article: sampleArticle(1, entity.StatusActive),
		Comments: pagination.Page[*entity.Comment]{
			Items:    []*entity.Comment{{ID: 5, ArticleID: 1, Author: "bob", Text: "hi", CreatedAt: created, UpdatedAt: created}},
			Metadata: pagination.Metadata{Total: 4, Page: params.Page, Limit: 3, TotalPages: 2, HasPrevious: params.Page > 1},
		},
	}, nil
}

func (s *stubService) Create(_ context.Context, values url.Values) (*entity.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	a := sampleArticle(3, entity.StatusActive)
	a.Title = values.Get("title")
	return a, nil
}

func (s *stubService) Update(_ context.Context, id int64, values url.Values) (*entity.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	a := sampleArticle(id, entity.StatusActive)
	a.Title = values.Get("title")
	return a, nil
}

func (s *stubService) Delete(_ context.Context, id int64, confirmed bool) (crudUC.DeleteResult[entity.Article], error) {
	if s.err != nil {
		return crudUC.DeleteResult[entity.Article]{}, s.err
	}
	a := sampleArticle(id, entity.StatusActive)
	if !confirmed {
		return crudUC.DeleteResult[entity.Article]{Object: a}, nil
	}
	s.deleted = append(s.deleted, id)
	a.Status = entity.StatusArchived
	return crudUC.DeleteResult[entity.Article]{Deleted: true, Object: a}, nil
}

type stubComments struct{}

func (stubComments) CreateForArticle(_ context.Context, articleID int64, values url.Values) (*entity.Comment, error) {
	switch articleID {
	case 1:
		return &entity.Comment{ID: 9, ArticleID: 1, Author: values.Get("author"), Text: values.Get("text"), CreatedAt: created, UpdatedAt: created}, nil
	case 2:
		return nil, form.Single(values, form.NonField, commentUC.CodeArticleArchived, "comments are closed for archived articles")
	default:
		return nil, commentUC.ErrArticleNotFound
	}
}

func newMux(svc *stubService) *http.ServeMux {
	mux := http.NewServeMux()
	Register(mux, svc, stubComments{}, nil)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

/* ───────── テスト ───────── */

func TestIndexHandler(t *testing.T) {
	rec := do(t, newMux(&stubService{}), http.MethodGet, "/articles?search=go", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body IndexResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "go", body.Search)
	require.Len(t, body.Articles.Data, 1)
	assert.Equal(t, int64(2), body.Articles.Data[0].ID)
	assert.Equal(t, "search=go", body.Articles.Pagination.Query)
	require.Len(t, body.Archived, 1)
	assert.Equal(t, "archived", body.Archived[0].Status)
	assert.Equal(t, []string{"go"}, body.Archived[0].Tags)
	assert.Equal(t, &CategoryDTO{ID: 2, Name: "golang"}, body.Archived[0].Category)
	assert.Equal(t, AuthorDTO{ID: 7, Username: "alice"}, body.Archived[0].Author)
}

func TestIndexHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   string
		wantCode int
	}{
		{name: "bad page", target: "/articles?page=x", wantCode: http.StatusBadRequest},
		{name: "out of range", target: "/articles?page=9", err: fmt.Errorf("list active articles: %w", pagination.ErrPageOutOfRange), wantCode: http.StatusNotFound},
		{name: "database", target: "/articles", err: fmt.Errorf("count: connection refused"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newMux(&stubService{err: tt.err}), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestSearchHandler(t *testing.T) {
	t.Run("criteria echoed", func(t *testing.T) {
		svc := &stubService{}
		rec := do(t, newMux(svc), http.MethodGet, "/articles/search?text=go&in_tags=on", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body SearchResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "go", body.Criteria.Text)
		assert.True(t, body.Criteria.InTags)
		assert.False(t, body.Criteria.InTitle)
		assert.Len(t, body.Results.Data, 1)
		assert.Equal(t, "go", svc.lastQuery.Get("text"))
	})

	t.Run("empty criteria rejected", func(t *testing.T) {
		rec := do(t, newMux(&stubService{}), http.MethodGet, "/articles/search", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Errors form.Errors `json:"errors"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, []string{search.CodeTextAndAuthorEmpty}, body.Errors.Codes(form.NonField))
	})
}

func TestDetailHandler(t *testing.T) {
	mux := newMux(&stubService{})

	rec := do(t, mux, http.MethodGet, "/articles/1?page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body DetailResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Article.ID)
	assert.Equal(t, []comment.DTO{{ID: 5, ArticleID: 1, Author: "bob", Text: "hi", CreatedAt: created, UpdatedAt: created}}, body.Comments.Data)
	assert.Equal(t, 2, body.Comments.Pagination.Page)

	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/articles/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/articles/-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/articles/1?page=0", "").Code)
}

func TestWriteHandlers_Authorization(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		err      error
		wantCode int
	}{
		{name: "create", method: http.MethodPost, target: "/articles", wantCode: http.StatusCreated},
		{name: "create anonymous", method: http.MethodPost, target: "/articles", err: fmt.Errorf("create article: %w", crudUC.ErrUnauthenticated), wantCode: http.StatusUnauthorized},
		{name: "update", method: http.MethodPut, target: "/articles/4", wantCode: http.StatusOK},
		{name: "update by other user", method: http.MethodPut, target: "/articles/4", err: fmt.Errorf("update article: %w", crudUC.ErrForbidden), wantCode: http.StatusForbidden},
		{name: "delete by other user", method: http.MethodDelete, target: "/articles/4", err: fmt.Errorf("delete article: %w", crudUC.ErrForbidden), wantCode: http.StatusForbidden},
		{name: "delete missing", method: http.MethodPost, target: "/articles/4/delete", err: artUC.ErrArticleNotFound, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newMux(&stubService{err: tt.err}), tt.method, tt.target, "title=A+long+enough+title")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestCreateHandler_LoginURL(t *testing.T) {
	svc := &stubService{err: crudUC.ErrUnauthenticated}
	rec := do(t, newMux(svc), http.MethodPost, "/articles", "title=A+long+enough+title")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "/accounts/login?next=%2Farticles", body["login_url"])
}

func TestDeleteHandler_PreviewThenArchive(t *testing.T) {
	svc := &stubService{}
	mux := newMux(svc)

	rec := do(t, mux, http.MethodGet, "/articles/4/delete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.deleted)
	assert.Contains(t, rec.Body.String(), `"confirm":true`)

	rec = do(t, mux, http.MethodPost, "/articles/4/delete", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, mux, http.MethodDelete, "/articles/5", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{4, 5}, svc.deleted)
}

func TestCommentCreateHandler(t *testing.T) {
	mux := newMux(&stubService{})

	rec := do(t, mux, http.MethodPost, "/articles/1/comments", "author=bob&text=hello")
	require.Equal(t, http.StatusCreated, rec.Code)
	var c comment.DTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Equal(t, "bob", c.Author)
	assert.Equal(t, int64(1), c.ArticleID)

	rec = do(t, mux, http.MethodPost, "/articles/2/comments", "author=bob&text=hello")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), commentUC.CodeArticleArchived)

	rec = do(t, mux, http.MethodPost, "/articles/3/comments", "author=bob&text=hello")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToDTO_HTMLIsSanitizedTextIsRaw(t *testing.T) {
	a := sampleArticle(1, entity.StatusActive)
	a.Text = `<p>don't</p><script>alert(1)</script>`

	got := ToDTO(a)

	assert.Equal(t, a.Text, got.Text)
	assert.Equal(t, "<p>don&#39;t</p>", got.HTML)
}
