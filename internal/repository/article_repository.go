package repository

import (
	"context"
	"time"

	"blog-platform/internal/domain/entity"
)

// ArticleRepository persists articles and their tag links.
// Articles returned by Get and List carry their author name, category and tags.
type ArticleRepository interface {
	// Count returns the number of distinct articles matching q.Filter.
	Count(ctx context.Context, q ListQuery) (int64, error)
	// List returns one page of distinct articles matching q.Filter.
	List(ctx context.Context, q ListQuery) ([]*entity.Article, error)
	Get(ctx context.Context, id int64) (*entity.Article, error)
	Create(ctx context.Context, article *entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id int64) error
	// Archive moves the article to the archived status.
	Archive(ctx context.Context, id int64, at time.Time) error
	// ReplaceTags clears the tag links of the article and attaches tagIDs.
	ReplaceTags(ctx context.Context, articleID int64, tagIDs []int64) error
	// ListActiveIDs returns the ids of all active articles.
	ListActiveIDs(ctx context.Context) ([]int64, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}

// TagRepository resolves tags by name.
type TagRepository interface {
	// GetOrCreate returns the tag with exactly this name, inserting it when absent.
	GetOrCreate(ctx context.Context, name string) (*entity.Tag, error)
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Count(ctx context.Context, q ListQuery) (int64, error)
	List(ctx context.Context, q ListQuery) ([]*entity.Category, error)
	Get(ctx context.Context, id int64) (*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
	ListIDs(ctx context.Context) ([]int64, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	Count(ctx context.Context, q ListQuery) (int64, error)
	List(ctx context.Context, q ListQuery) ([]*entity.Comment, error)
	Get(ctx context.Context, id int64) (*entity.Comment, error)
	Create(ctx context.Context, comment *entity.Comment) error
	Update(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id int64) error
}
