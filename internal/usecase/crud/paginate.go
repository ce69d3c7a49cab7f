package crud

import (
	"context"
	"time"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/pkg/search"
	"blog-platform/internal/repository"
)

// Lister is the read half of Store.
type Lister[T any] interface {
	Count(ctx context.Context, q repository.ListQuery) (int64, error)
	List(ctx context.Context, q repository.ListQuery) ([]*T, error)
}

// Paginate counts the rows matching filter, resolves the requested page of
// window and loads it.
func Paginate[T any](ctx context.Context, store Lister[T], window pagination.Window, params pagination.Params, filter search.Expr, ordering string) (pagination.Page[*T], error) {
	start := time.Now()
	total, err := store.Count(ctx, repository.ListQuery{Filter: filter})
	if err != nil {
		return pagination.Page[*T]{}, err
	}
	countDone := time.Now()

	qp, meta, err := window.Resolve(params, total)
	if err != nil {
		return pagination.Page[*T]{}, err
	}

	items, err := store.List(ctx, repository.ListQuery{
		Filter:   filter,
		Ordering: ordering,
		Offset:   qp.Offset,
		Limit:    qp.Limit,
	})
	if err != nil {
		return pagination.Page[*T]{}, err
	}
	if items == nil {
		items = []*T{}
	}

	listing := listingName(ctx)
	pagination.RecordDuration(listing, "count", countDone.Sub(start).Seconds())
	pagination.RecordDuration(listing, "select", time.Since(countDone).Seconds())
	pagination.UpdateTotalCount(listing, total)

	return pagination.Page[*T]{Items: items, Metadata: meta}, nil
}

type listingKey struct{}

// WithListing names the listing for pagination metrics.
func WithListing(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, listingKey{}, name)
}

func listingName(ctx context.Context) string {
	if name, ok := ctx.Value(listingKey{}).(string); ok {
		return name
	}
	return "unknown"
}
