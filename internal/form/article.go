package form

import (
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blog-platform/internal/domain/entity"
)

// Article is the create/update form of an article.
// The author and status are never taken from input.
type Article struct {
	values url.Values

	Title      string `json:"title"`
	Text       string `json:"text"`
	CategoryID *int64 `json:"category_id"`
	Tags       string `json:"tags"`

	categories ChoiceSet
	tagNames   []string
	idErr      error
}

// NewArticle binds values to an article form. categories holds the selectable
// category ids; a nil set skips the membership check.
func NewArticle(values url.Values, categories ChoiceSet) *Article {
	f := &Article{
		values:     values,
		Title:      Text(values, "title"),
		Text:       values.Get("text"),
		Tags:       values.Get("tags"),
		categories: categories,
	}
	f.CategoryID, f.idErr = OptionalID(values, "category_id")
	return f
}

// Values returns the bound raw values.
func (f *Article) Values() url.Values { return f.values }

// Clean validates the form. It returns *Invalid on failure.
func (f *Article) Clean() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Title,
			validation.Required,
			validation.RuneLength(0, entity.MaxTitleLength),
			validation.By(titleLongEnough),
		),
		validation.Field(&f.Text, validation.Required),
		validation.Field(&f.CategoryID, validation.By(f.categoryExists)),
		validation.Field(&f.Tags, validation.By(f.tagsValid)),
	)
	errs, ierr := FromValidation(err)
	if ierr != nil {
		return ierr
	}

	// whole-form rule only once the fields themselves are valid
	if !errs.Has("title") && !errs.Has("text") {
		var ve *entity.ValidationError
		if cerr := entity.ValidateArticleContent(f.Title, f.Text); errors.As(cerr, &ve) && ve.Code == entity.CodeTitleTextDuplicate {
			errs.Add(NonField, ve.Code, "article text should not duplicate the title")
		}
	}
	if len(errs) > 0 {
		return NewInvalid(f.values, errs)
	}
	f.tagNames = entity.ParseTagNames(f.Tags)
	return nil
}

func titleLongEnough(value interface{}) error {
	title, _ := value.(string)
	if title == "" {
		return nil
	}
	if utf8.RuneCountInString(title) <= entity.MinTitleLength {
		return validation.NewError(entity.CodeTooShort,
			fmt.Sprintf("title should be more than %d characters long", entity.MinTitleLength))
	}
	return nil
}

func (f *Article) categoryExists(value interface{}) error {
	if f.idErr != nil {
		return validation.NewError("invalid_choice", f.idErr.Error())
	}
	id, _ := value.(*int64)
	if id == nil || f.categories == nil {
		return nil
	}
	if !f.categories.Contains(*id) {
		return validation.NewError("invalid_choice", "select a valid category")
	}
	return nil
}

func (f *Article) tagsValid(value interface{}) error {
	raw, _ := value.(string)
	for _, name := range entity.ParseTagNames(raw) {
		if utf8.RuneCountInString(name) > entity.MaxTagNameLength {
			return validation.NewError("tag_too_long",
				fmt.Sprintf("tag %q must be at most %d characters", name, entity.MaxTagNameLength))
		}
	}
	return nil
}

// TagNames returns the parsed tag names. Valid only after Clean succeeded.
func (f *Article) TagNames() []string { return f.tagNames }

// Build returns a new active article from the cleaned data.
func (f *Article) Build() *entity.Article {
	a := &entity.Article{Status: entity.StatusActive}
	f.ApplyTo(a)
	return a
}

// ApplyTo overwrites the cleaned fields of a.
func (f *Article) ApplyTo(a *entity.Article) {
	a.Title = f.Title
	a.Text = f.Text
	a.CategoryID = f.CategoryID
}
