// Package comment provides the comment use cases: the generic CRUD resource
// restricted to active articles, and the comment form nested under an article.
package comment

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	"blog-platform/internal/observability/metrics"
	"blog-platform/internal/repository"
	"blog-platform/internal/service/auth"
	"blog-platform/internal/usecase/crud"
)

// ErrArticleNotFound indicates that the article a comment targets does not exist.
var ErrArticleNotFound = fmt.Errorf("article: %w", entity.ErrNotFound)

// CodeArticleArchived is reported under form.NonField when commenting on an archived article.
const CodeArticleArchived = "article_archived"

// Service provides comment use cases.
type Service struct {
	Comments repository.CommentRepository
	Articles repository.ArticleRepository
	Window   pagination.Window
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Resource returns the generic CRUD configuration of comments. Anyone may
// comment; editing and deleting need a login.
func (s *Service) Resource() *crud.Resource[entity.Comment, *form.Comment] {
	return &crud.Resource[entity.Comment, *form.Comment]{
		Name:            "comment",
		Store:           s.Comments,
		NewForm:         s.newForm,
		Ordering:        "-created_at",
		Window:          s.Window,
		ConfirmDeletion: true,
		Authorize:       crud.LoginRequired[entity.Comment](crud.OpUpdate, crud.OpDelete),
		BeforeSave:      s.beforeSave,
	}
}

// newForm restricts the article choice to active articles.
func (s *Service) newForm(ctx context.Context, values url.Values) (*form.Comment, error) {
	ids, err := s.Articles.ListActiveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active articles: %w", err)
	}
	return form.NewComment(values, form.NewChoiceSet(ids)), nil
}

func (s *Service) beforeSave(_ context.Context, _ *form.Comment, c *entity.Comment, creating bool) error {
	s.touch(c, creating)
	return nil
}

func (s *Service) touch(c *entity.Comment, creating bool) {
	now := s.now()
	if creating {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// List returns one page of all comments, newest first.
func (s *Service) List(ctx context.Context, params pagination.Params) (pagination.Page[*entity.Comment], error) {
	return s.Resource().List(ctx, params)
}

// Detail returns one comment.
func (s *Service) Detail(ctx context.Context, id int64) (*entity.Comment, error) {
	return s.Resource().Detail(ctx, id)
}

// Create adds a comment through the standalone form.
func (s *Service) Create(ctx context.Context, values url.Values) (*entity.Comment, error) {
	c, err := s.Resource().Create(ctx, values)
	if err != nil {
		return nil, err
	}
	metrics.RecordCommentCreated("form")
	return c, nil
}

// Update edits a comment.
func (s *Service) Update(ctx context.Context, id int64, values url.Values) (*entity.Comment, error) {
	return s.Resource().Update(ctx, id, values)
}

// Delete removes a comment once confirmed.
func (s *Service) Delete(ctx context.Context, id int64, confirmed bool) (crud.DeleteResult[entity.Comment], error) {
	return s.Resource().Delete(ctx, id, confirmed)
}

// CreateForArticle adds a comment to articleID. A blank author defaults to
// the username of the acting user. Archived articles take no comments.
func (s *Service) CreateForArticle(ctx context.Context, articleID int64, values url.Values) (*entity.Comment, error) {
	a, err := s.Articles.Get(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}

	var defaultAuthor string
	if user, ok := auth.UserFromContext(ctx); ok {
		defaultAuthor = user.Username
	}
	f := form.NewArticleComment(values, defaultAuthor)
	if err := f.Clean(); err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, form.Single(values, form.NonField, CodeArticleArchived, "comments are closed for archived articles")
	}

	c := f.Build(articleID)
	s.touch(c, true)
	if err := s.Comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	metrics.RecordCommentCreated("article")
	return c, nil
}
