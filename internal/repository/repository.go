// Package repository declares the persistence ports used by the usecases.
// Get-style methods return (nil, nil) when the row does not exist; unique
// constraint violations surface as entity.ErrConflict.
package repository

import (
	"context"

	"blog-platform/internal/pkg/search"
)

// ListQuery selects a page of rows.
// Ordering is a field name with an optional "-" prefix for descending order;
// stores reject fields they do not know. A zero Limit means no rows.
type ListQuery struct {
	Filter   search.Expr
	Ordering string
	Offset   int
	Limit    int
}

// TxManager runs fn inside a database transaction carried by ctx.
// Repositories called with that ctx join the transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
