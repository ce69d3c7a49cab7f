// Package article provides use cases for managing article entities:
// the partitioned listing, full search, detail with comments, and
// create/update/archive with tag resolution and the owner gate.
package article

import (
	"errors"
	"fmt"

	"blog-platform/internal/domain/entity"
)

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not found.
	ErrArticleNotFound = fmt.Errorf("article: %w", entity.ErrNotFound)

	// ErrInvalidArticleID indicates that the provided article ID is invalid.
	// Article IDs must be positive integers.
	ErrInvalidArticleID = errors.New("invalid article ID")
)
