// Package category provides the category use cases on top of the generic
// CRUD resource. Reading is public; changes need a login.
package category

import (
	"context"
	"errors"
	"net/url"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	"blog-platform/internal/repository"
	"blog-platform/internal/usecase/crud"
)

// Service provides category use cases.
type Service struct {
	Categories repository.CategoryRepository
	Window     pagination.Window
}

// Resource returns the generic CRUD configuration of categories.
func (s *Service) Resource() *crud.Resource[entity.Category, *form.Category] {
	return &crud.Resource[entity.Category, *form.Category]{
		Name:  "category",
		Store: s.Categories,
		NewForm: func(_ context.Context, values url.Values) (*form.Category, error) {
			return form.NewCategory(values), nil
		},
		Ordering:        "name",
		Window:          s.Window,
		ConfirmDeletion: true,
		Authorize:       crud.LoginRequired[entity.Category](crud.OpCreate, crud.OpUpdate, crud.OpDelete),
	}
}

// List returns one page of categories ordered by name.
func (s *Service) List(ctx context.Context, params pagination.Params) (pagination.Page[*entity.Category], error) {
	return s.Resource().List(ctx, params)
}

// Detail returns the category with id.
func (s *Service) Detail(ctx context.Context, id int64) (*entity.Category, error) {
	return s.Resource().Detail(ctx, id)
}

// Delete removes a category once confirmed. Its articles keep existing
// without a category.
func (s *Service) Delete(ctx context.Context, id int64, confirmed bool) (crud.DeleteResult[entity.Category], error) {
	return s.Resource().Delete(ctx, id, confirmed)
}

// Create adds a category. A taken name is reported as *form.Invalid.
func (s *Service) Create(ctx context.Context, values url.Values) (*entity.Category, error) {
	c, err := s.Resource().Create(ctx, values)
	return c, uniqueName(values, err)
}

// Update renames a category. A taken name is reported as *form.Invalid.
func (s *Service) Update(ctx context.Context, id int64, values url.Values) (*entity.Category, error) {
	c, err := s.Resource().Update(ctx, id, values)
	return c, uniqueName(values, err)
}

func uniqueName(values url.Values, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := form.AsInvalid(err); ok {
		return err
	}
	if errors.Is(err, entity.ErrConflict) {
		return form.Single(values, "name", "unique", "category with this name already exists")
	}
	return err
}
