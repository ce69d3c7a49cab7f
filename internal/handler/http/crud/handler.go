// Package crud provides the HTTP side of the generic CRUD resources: one
// handler per operation, parameterized by the entity and its DTO.
package crud

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/form"
	"blog-platform/internal/handler/http/auth"
	"blog-platform/internal/handler/http/pathutil"
	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/handler/http/respond"
	crudUC "blog-platform/internal/usecase/crud"
)

type Lister[T any] interface {
	List(ctx context.Context, params pagination.Params) (pagination.Page[*T], error)
}

type Detailer[T any] interface {
	Detail(ctx context.Context, id int64) (*T, error)
}

type Creator[T any] interface {
	Create(ctx context.Context, values url.Values) (*T, error)
}

type Updater[T any] interface {
	Update(ctx context.Context, id int64, values url.Values) (*T, error)
}

type Deleter[T any] interface {
	Delete(ctx context.Context, id int64, confirmed bool) (crudUC.DeleteResult[T], error)
}

// Service is the usecase surface the handlers drive. *crudUC.Resource
// satisfies it, as do the entity services that wrap one.
type Service[T any] interface {
	Lister[T]
	Detailer[T]
	Creator[T]
	Updater[T]
	Deleter[T]
}

// DeletePreview is returned by GET /{res}/{id}/delete while the deletion
// is not confirmed.
type DeletePreview[D any] struct {
	Confirm bool   `json:"confirm" example:"true"`
	Object  D      `json:"object"`
	Action  string `json:"action" example:"/articles/1/delete"`
}

// WriteError maps err to its HTTP answer. Anonymous users get the login
// URL, rejected owners are counted.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, crudUC.ErrUnauthenticated):
		auth.RespondLoginRequired(w, r)
		return
	case errors.Is(err, crudUC.ErrForbidden):
		auth.RecordForbiddenAttempt(r.Method)
		slog.Warn("forbidden",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
	}
	respond.Fail(w, err)
}

/* ─── List ─── */

// ListHandler serves GET /{res}. Listing names the pagination metrics.
type ListHandler[T, D any] struct {
	Svc     Lister[T]
	ToDTO   func(*T) D
	Listing string
	Logger  *slog.Logger
}

func (h ListHandler[T, D]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r)
	if err != nil {
		pagination.RecordError(h.Listing, "validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	obs := StartListing(r, h.Listing, h.Logger, params)
	page, err := h.Svc.List(r.Context(), params)
	if err != nil {
		obs.Fail(w, err)
		return
	}
	obs.Done(page.Metadata, len(page.Items))
	respond.JSON(w, http.StatusOK, pagination.Map(page, h.ToDTO))
}

/* ─── Detail ─── */

// DetailHandler serves GET /{res}/{id}.
type DetailHandler[T, D any] struct {
	Svc   Detailer[T]
	ToDTO func(*T) D
}

func (h DetailHandler[T, D]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	obj, err := h.Svc.Detail(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, h.ToDTO(obj))
}

/* ─── Create ─── */

// CreateHandler serves POST /{res}. Success answers 201 with the new object.
type CreateHandler[T, D any] struct {
	Svc   Creator[T]
	ToDTO func(*T) D
}

func (h CreateHandler[T, D]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	values, err := form.Decode(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	obj, err := h.Svc.Create(r.Context(), values)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, h.ToDTO(obj))
}

/* ─── Update ─── */

// UpdateHandler serves PUT /{res}/{id}.
type UpdateHandler[T, D any] struct {
	Svc   Updater[T]
	ToDTO func(*T) D
}

func (h UpdateHandler[T, D]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	values, err := form.Decode(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	obj, err := h.Svc.Update(r.Context(), id, values)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, h.ToDTO(obj))
}

/* ─── Delete ─── */

// DeleteHandler serves the delete routes. GET asks for confirmation and
// only previews; POST and DELETE confirm. A resource without confirmation
// deletes on GET as well.
type DeleteHandler[T, D any] struct {
	Svc   Deleter[T]
	ToDTO func(*T) D
}

func (h DeleteHandler[T, D]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	confirmed := r.Method != http.MethodGet
	res, err := h.Svc.Delete(r.Context(), id, confirmed)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if !res.Deleted {
		respond.JSON(w, http.StatusOK, DeletePreview[D]{
			Confirm: true,
			Object:  h.ToDTO(res.Object),
			Action:  r.URL.Path,
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
