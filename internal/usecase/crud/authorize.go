package crud

import (
	"context"
	"slices"

	"blog-platform/internal/service/auth"
)

// LoginRequired rejects anonymous users for ops. Other ops are open.
func LoginRequired[T any](ops ...Op) func(ctx context.Context, op Op, obj *T) error {
	return func(ctx context.Context, op Op, _ *T) error {
		if slices.Contains(ops, op) && auth.UserID(ctx) == 0 {
			return ErrUnauthenticated
		}
		return nil
	}
}

// OwnerRequired is LoginRequired that additionally rejects users other
// than owner(obj) for ops that carry an object.
func OwnerRequired[T any](owner func(obj *T) int64, ops ...Op) func(ctx context.Context, op Op, obj *T) error {
	return func(ctx context.Context, op Op, obj *T) error {
		if !slices.Contains(ops, op) {
			return nil
		}
		uid := auth.UserID(ctx)
		if uid == 0 {
			return ErrUnauthenticated
		}
		if obj != nil && owner(obj) != uid {
			return ErrForbidden
		}
		return nil
	}
}
