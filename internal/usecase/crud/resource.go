// Package crud implements list, detail, create, update and delete once for
// every entity. A Resource is configured by data (ordering, page window,
// confirmation) and hooks rather than by subclassing.
package crud

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/pkg/search"
	"blog-platform/internal/repository"
)

var (
	// ErrUnauthenticated is returned when an operation needs a logged in user.
	ErrUnauthenticated = errors.New("login required")

	// ErrForbidden is returned when Authorize rejects the acting user.
	ErrForbidden = errors.New("forbidden")
)

// Store is the persistence a Resource needs. Get returns (nil, nil) when the
// row does not exist.
type Store[T any] interface {
	Count(ctx context.Context, q repository.ListQuery) (int64, error)
	List(ctx context.Context, q repository.ListQuery) ([]*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, obj *T) error
	Update(ctx context.Context, obj *T) error
	Delete(ctx context.Context, id int64) error
}

// Form is a bound input form. Clean returns *form.Invalid on bad input.
type Form[T any] interface {
	Clean() error
	Build() *T
	ApplyTo(obj *T)
}

// Op names the operation being authorized.
type Op string

const (
	OpList   Op = "list"
	OpDetail Op = "detail"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Resource is the generic CRUD configuration of one entity type.
type Resource[T any, F Form[T]] struct {
	// Name is used in errors and logs ("article", "comment", ...).
	Name  string
	Store Store[T]

	// NewForm binds raw values. It receives ctx so it can load choices.
	NewForm func(ctx context.Context, values url.Values) (F, error)

	Ordering        string
	Window          pagination.Window
	ConfirmDeletion bool

	// Filter narrows List. A nil Filter, or a nil Expr, lists everything.
	Filter func(ctx context.Context, query url.Values) (search.Expr, error)

	// Authorize is consulted before every operation; obj is nil for list and create.
	Authorize func(ctx context.Context, op Op, obj *T) error

	// BeforeSave runs after the form was applied and before the row is written.
	BeforeSave func(ctx context.Context, f F, obj *T, creating bool) error

	// AfterSave runs after the row was written, in the same transaction.
	AfterSave func(ctx context.Context, f F, obj *T, creating bool) error

	// Remove replaces the physical delete, e.g. to archive.
	Remove func(ctx context.Context, obj *T) error

	// Tx wraps writes in a transaction when set.
	Tx repository.TxManager
}

// DeleteResult reports a delete request. Deleted is false for a confirmation preview.
type DeleteResult[T any] struct {
	Deleted bool
	Object  *T
}

func (r *Resource[T, F]) notFound(id int64) error {
	return fmt.Errorf("%s %d: %w", r.Name, id, entity.ErrNotFound)
}

func (r *Resource[T, F]) authorize(ctx context.Context, op Op, obj *T) error {
	if r.Authorize == nil {
		return nil
	}
	if err := r.Authorize(ctx, op, obj); err != nil {
		return fmt.Errorf("%s %s: %w", op, r.Name, err)
	}
	return nil
}

func (r *Resource[T, F]) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.Tx == nil {
		return fn(ctx)
	}
	return r.Tx.WithinTx(ctx, fn)
}

/* ─── 1. List ─── */

// List returns the requested page. An empty listing still has page 1; any
// other page past the end wraps pagination.ErrPageOutOfRange.
func (r *Resource[T, F]) List(ctx context.Context, params pagination.Params) (pagination.Page[*T], error) {
	if err := r.authorize(ctx, OpList, nil); err != nil {
		return pagination.Page[*T]{}, err
	}
	var filter search.Expr
	if r.Filter != nil {
		f, err := r.Filter(ctx, params.Query)
		if err != nil {
			return pagination.Page[*T]{}, err
		}
		filter = f
	}
	page, err := Paginate(WithListing(ctx, r.Name), r.Store, r.Window, params, filter, r.Ordering)
	if err != nil {
		return pagination.Page[*T]{}, fmt.Errorf("list %s: %w", r.Name, err)
	}
	return page, nil
}

/* ─── 2. Detail ─── */

// Detail returns the object with id or wraps entity.ErrNotFound.
func (r *Resource[T, F]) Detail(ctx context.Context, id int64) (*T, error) {
	obj, err := r.Store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.Name, err)
	}
	if obj == nil {
		return nil, r.notFound(id)
	}
	if err := r.authorize(ctx, OpDetail, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

/* ─── 3. Create ─── */

// Create validates values and inserts a new object. On invalid input it
// returns *form.Invalid and writes nothing.
func (r *Resource[T, F]) Create(ctx context.Context, values url.Values) (*T, error) {
	if err := r.authorize(ctx, OpCreate, nil); err != nil {
		return nil, err
	}
	f, err := r.NewForm(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", r.Name, err)
	}
	if err := f.Clean(); err != nil {
		return nil, err
	}

	obj := f.Build()
	err = r.inTx(ctx, func(ctx context.Context) error {
		if r.BeforeSave != nil {
			if err := r.BeforeSave(ctx, f, obj, true); err != nil {
				return err
			}
		}
		if err := r.Store.Create(ctx, obj); err != nil {
			return err
		}
		if r.AfterSave != nil {
			return r.AfterSave(ctx, f, obj, true)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", r.Name, err)
	}
	return obj, nil
}

/* ─── 4. Update ─── */

// Update validates values and overwrites the cleaned fields of object id.
func (r *Resource[T, F]) Update(ctx context.Context, id int64, values url.Values) (*T, error) {
	obj, err := r.Store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.Name, err)
	}
	if obj == nil {
		return nil, r.notFound(id)
	}
	if err := r.authorize(ctx, OpUpdate, obj); err != nil {
		return nil, err
	}

	f, err := r.NewForm(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.Name, err)
	}
	if err := f.Clean(); err != nil {
		return nil, err
	}

	f.ApplyTo(obj)
	err = r.inTx(ctx, func(ctx context.Context) error {
		if r.BeforeSave != nil {
			if err := r.BeforeSave(ctx, f, obj, false); err != nil {
				return err
			}
		}
		if err := r.Store.Update(ctx, obj); err != nil {
			return err
		}
		if r.AfterSave != nil {
			return r.AfterSave(ctx, f, obj, false)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.Name, err)
	}
	return obj, nil
}

/* ─── 5. Delete ─── */

// Delete removes object id. With ConfirmDeletion set and confirmed false it
// only returns the object so the caller can ask for confirmation.
func (r *Resource[T, F]) Delete(ctx context.Context, id int64, confirmed bool) (DeleteResult[T], error) {
	obj, err := r.Store.Get(ctx, id)
	if err != nil {
		return DeleteResult[T]{}, fmt.Errorf("delete %s: %w", r.Name, err)
	}
	if obj == nil {
		return DeleteResult[T]{}, r.notFound(id)
	}
	if err := r.authorize(ctx, OpDelete, obj); err != nil {
		return DeleteResult[T]{}, err
	}
	if r.ConfirmDeletion && !confirmed {
		return DeleteResult[T]{Deleted: false, Object: obj}, nil
	}

	err = r.inTx(ctx, func(ctx context.Context) error {
		if r.Remove != nil {
			return r.Remove(ctx, obj)
		}
		return r.Store.Delete(ctx, id)
	})
	if err != nil {
		return DeleteResult[T]{}, fmt.Errorf("delete %s: %w", r.Name, err)
	}
	return DeleteResult[T]{Deleted: true, Object: obj}, nil
}
