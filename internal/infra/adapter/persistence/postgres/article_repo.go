package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/pkg/search"
	"blog-platform/internal/repository"
)

const articleColumns = `
a.id, a.title, a.author_id, u.username, a.text, a.category_id, cat.name,
a.status, a.created_at, a.updated_at
FROM articles a
JOIN users u ON u.id = a.author_id
LEFT JOIN categories cat ON cat.id = a.category_id`

var articleOrdering = map[string]string{
	"id":         "a.id",
	"created_at": "a.created_at",
	"updated_at": "a.updated_at",
	"title":      "a.title",
}

type ArticleRepo struct {
	db DBTX
}

func NewArticleRepo(db DBTX) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func (repo *ArticleRepo) Count(ctx context.Context, q repository.ListQuery) (int64, error) {
	where, args, err := whereClause(articleTable, q.Filter)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}

	// Apply search timeout to prevent long-running queries
	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	var count int64
	query := "SELECT COUNT(*) FROM articles a " + where
	if err := conn(ctx, repo.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.Article, error) {
	if q.Limit <= 0 {
		return []*entity.Article{}, nil
	}
	where, args, err := whereClause(articleTable, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	order, err := orderBy(articleOrdering, q.Ordering, "a.id")
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	n := len(args)
	query := fmt.Sprintf("SELECT %s\n%s\n%s\nLIMIT $%d OFFSET $%d", articleColumns, where, order, n+1, n+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := conn(ctx, repo.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, q.Limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	if err := repo.attachTags(ctx, articles); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return articles, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := "SELECT " + articleColumns + "\nWHERE a.id = $1\nLIMIT 1"
	article, err := scanArticle(conn(ctx, repo.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if err := repo.attachTags(ctx, []*entity.Article{article}); err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles (title, author_id, text, category_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := conn(ctx, repo.db).QueryRowContext(ctx, query,
		article.Title, article.AuthorID, article.Text, article.CategoryID,
		string(article.Status), article.CreatedAt, article.UpdatedAt,
	).Scan(&article.ID)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles
SET title = $1, text = $2, category_id = $3, status = $4, updated_at = $5
WHERE id = $6`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query,
		article.Title, article.Text, article.CategoryID, string(article.Status),
		article.UpdatedAt, article.ID)
	if err != nil {
		return mapError("Update", err)
	}
	return expectOneRow("Update", res)
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = $1`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return expectOneRow("Delete", res)
}

func (repo *ArticleRepo) Archive(ctx context.Context, id int64, at time.Time) error {
	const query = `
UPDATE articles
SET status = $1, updated_at = $2
WHERE id = $3 AND status <> $1`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, string(entity.StatusArchived), at, id)
	if err != nil {
		return fmt.Errorf("Archive: %w", err)
	}
	// already archived is not an error
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("Archive: RowsAffected: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) ReplaceTags(ctx context.Context, articleID int64, tagIDs []int64) error {
	db := conn(ctx, repo.db)
	if _, err := db.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("ReplaceTags: clear: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}
	const insert = `
INSERT INTO article_tags (article_id, tag_id)
SELECT $1, unnest($2::bigint[])
ON CONFLICT DO NOTHING`
	if _, err := db.ExecContext(ctx, insert, articleID, pq.Array(tagIDs)); err != nil {
		return fmt.Errorf("ReplaceTags: attach: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) ListActiveIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT id FROM articles WHERE status = $1 ORDER BY id`
	rows, err := conn(ctx, repo.db).QueryContext(ctx, query, string(entity.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("ListActiveIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0, 64)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ListActiveIDs: Scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (repo *ArticleRepo) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE author_id = $1`
	var count int64
	if err := conn(ctx, repo.db).QueryRowContext(ctx, query, authorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountByAuthor: %w", err)
	}
	return count, nil
}

// attachTags loads the tags of all articles with one query.
func (repo *ArticleRepo) attachTags(ctx context.Context, articles []*entity.Article) error {
	if len(articles) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(articles))
	byID := make(map[int64]*entity.Article, len(articles))
	for _, a := range articles {
		a.Tags = []entity.Tag{}
		ids = append(ids, a.ID)
		byID[a.ID] = a
	}

	const query = `
SELECT at.article_id, t.id, t.name
FROM article_tags at
JOIN tags t ON t.id = at.tag_id
WHERE at.article_id = ANY($1)
ORDER BY t.name`
	rows, err := conn(ctx, repo.db).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var articleID int64
		var tag entity.Tag
		if err := rows.Scan(&articleID, &tag.ID, &tag.Name); err != nil {
			return fmt.Errorf("tags: Scan: %w", err)
		}
		if a, ok := byID[articleID]; ok {
			a.Tags = append(a.Tags, tag)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		article      entity.Article
		categoryID   sql.NullInt64
		categoryName sql.NullString
		status       string
	)
	if err := row.Scan(&article.ID, &article.Title, &article.AuthorID, &article.AuthorName,
		&article.Text, &categoryID, &categoryName, &status,
		&article.CreatedAt, &article.UpdatedAt); err != nil {
		return nil, err
	}
	article.Status = entity.ArticleStatus(status)
	if categoryID.Valid {
		id := categoryID.Int64
		article.CategoryID = &id
		article.Category = &entity.Category{ID: id, Name: categoryName.String}
	}
	return &article, nil
}
