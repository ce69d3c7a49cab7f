package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/repository"
)

type TagRepo struct {
	db DBTX
}

func NewTagRepo(db DBTX) repository.TagRepository {
	return &TagRepo{db: db}
}

// GetOrCreate inserts the tag unless it exists. ON CONFLICT keeps a
// surrounding transaction usable when a concurrent request inserted the same
// name first; if that row is not yet visible the caller gets ErrConflict and
// may retry.
func (repo *TagRepo) GetOrCreate(ctx context.Context, name string) (*entity.Tag, error) {
	db := conn(ctx, repo.db)
	tag := entity.Tag{Name: name}

	const insert = `
INSERT INTO tags (name) VALUES ($1)
ON CONFLICT (name) DO NOTHING
RETURNING id`
	err := db.QueryRowContext(ctx, insert, name).Scan(&tag.ID)
	if err == nil {
		return &tag, nil
	}
	if err != sql.ErrNoRows {
		return nil, mapError("GetOrCreate", err)
	}

	const query = `SELECT id FROM tags WHERE name = $1`
	err = db.QueryRowContext(ctx, query, name).Scan(&tag.ID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetOrCreate: tag %q: %w", name, entity.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("GetOrCreate: %w", err)
	}
	return &tag, nil
}
