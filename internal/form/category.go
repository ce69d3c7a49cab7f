package form

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blog-platform/internal/domain/entity"
)

// Category is the create/update form of a category.
type Category struct {
	values url.Values

	Name string `json:"name"`
}

// NewCategory binds values to a category form.
func NewCategory(values url.Values) *Category {
	return &Category{values: values, Name: Text(values, "name")}
}

// Values returns the bound raw values.
func (f *Category) Values() url.Values { return f.values }

// Clean validates the form. It returns *Invalid on failure.
func (f *Category) Clean() error {
	return finish(f.values, validation.ValidateStruct(f,
		validation.Field(&f.Name, validation.Required, validation.RuneLength(0, entity.MaxCategoryNameLength)),
	))
}

// Build returns a new category from the cleaned data.
func (f *Category) Build() *entity.Category {
	return &entity.Category{Name: f.Name}
}

// ApplyTo overwrites the cleaned fields of c.
func (f *Category) ApplyTo(c *entity.Category) {
	c.Name = f.Name
}
