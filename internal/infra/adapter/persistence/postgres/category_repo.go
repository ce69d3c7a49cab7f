package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/repository"
)

var categoryOrdering = map[string]string{
	"id":   "cat.id",
	"name": "cat.name",
}

type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) repository.CategoryRepository {
	return &CategoryRepo{db: db}
}

func (repo *CategoryRepo) Count(ctx context.Context, q repository.ListQuery) (int64, error) {
	where, args, err := whereClause(categoryTable, q.Filter)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	var count int64
	query := "SELECT COUNT(*) FROM categories cat " + where
	if err := conn(ctx, repo.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *CategoryRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.Category, error) {
	if q.Limit <= 0 {
		return []*entity.Category{}, nil
	}
	where, args, err := whereClause(categoryTable, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	order, err := orderBy(categoryOrdering, q.Ordering, "cat.id")
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT cat.id, cat.name FROM categories cat %s %s LIMIT $%d OFFSET $%d", where, order, n+1, n+2)
	rows, err := conn(ctx, repo.db).QueryContext(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := make([]*entity.Category, 0, q.Limit)
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (repo *CategoryRepo) Get(ctx context.Context, id int64) (*entity.Category, error) {
	const query = `SELECT id, name FROM categories WHERE id = $1`
	var c entity.Category
	err := conn(ctx, repo.db).QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &c, nil
}

func (repo *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	const query = `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	if err := conn(ctx, repo.db).QueryRowContext(ctx, query, category.Name).Scan(&category.ID); err != nil {
		return mapError("Create", err)
	}
	return nil
}

func (repo *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	const query = `UPDATE categories SET name = $1 WHERE id = $2`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, category.Name, category.ID)
	if err != nil {
		return mapError("Update", err)
	}
	return expectOneRow("Update", res)
}

func (repo *CategoryRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM categories WHERE id = $1`
	res, err := conn(ctx, repo.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return expectOneRow("Delete", res)
}

func (repo *CategoryRepo) ListIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT id FROM categories ORDER BY id`
	rows, err := conn(ctx, repo.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ListIDs: Scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
