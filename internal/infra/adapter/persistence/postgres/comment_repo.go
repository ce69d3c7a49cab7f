package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/pkg/search"
	"blog-platform/internal/repository"
)

var commentOrdering = map[string]string{
	"id":         "c.id",
	"created_at": "c.created_at",
	"updated_at": "c.updated_at",
}

type CommentRepo struct {
	db DBTX
}

func NewCommentRepo(db DBTX) repository.CommentRepository {
	return &CommentRepo{db: db}
}

func (repo *CommentRepo) Count(ctx context.Context, q repository.ListQuery) (int64, error) {
	where, args, err := whereClause(commentTable, q.Filter)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	var count int64
	query := "SELECT COUNT(*) FROM comments c " + where
	if err := conn(ctx, repo.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *CommentRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.Comment, error) {
	if q.Limit <= 0 {
		return []*entity.Comment{}, nil
	}
	where, args, err := whereClause(commentTable, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	order, err := orderBy(commentOrdering, q.Ordering, "c.id")
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, search.DefaultSearchTimeout)
	defer cancel()

	n := len(args)
	query := fmt.Sprintf(`
SELECT c.id, c.article_id, c.author, c.text, c.created_at, c.updated_at
FROM comments c
%s
%s
LIMIT $%d OFFSET $%d`, where, order, n+1, n+2)
	rows, err := conn(ctx, repo.db).QueryContext(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	comments := make([]*entity.Comment, 0, q.Limit)
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Author, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (repo *CommentRepo) Get(ctx context.Context, id int64) (*entity.Comment, error) {
	const query = `
SELECT id, article_id, author, text, created_at, updated_at
FROM comments
WHERE id = $1`
	var c entity.Comment
	err := conn(ctx, repo.db).QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.ArticleID, &c.Author, &c.Text, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &c, nil
}

func (repo *CommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	const query = `
INSERT INTO comments (article_id, author, text, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := conn(ctx, repo.db).QueryRowContext(ctx, query,
		comment.ArticleID, comment.Author, comment.Text, comment.CreatedAt, comment.UpdatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *CommentRepo) Update(ctx context.Context, comment *entity.Comment) error {
	const query = `
UPDATE comments
SET article_id = $1, author = $2, text = $3, updated_at = $4
WHERE id = $5`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query,
		comment.ArticleID, comment.Author, comment.Text, comment.UpdatedAt, comment.ID)
	if err != nil {
		return mapError("Update", err)
	}
	return expectOneRow("Update", res)
}

func (repo *CommentRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM comments WHERE id = $1`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return expectOneRow("Delete", res)
}
