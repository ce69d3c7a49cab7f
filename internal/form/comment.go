package form

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blog-platform/internal/domain/entity"
)

// Comment is the standalone comment form. The target article must be one of
// the active article ids handed to NewComment.
type Comment struct {
	values url.Values

	ArticleID *int64 `json:"article_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`

	articles ChoiceSet
	idErr    error
}

// NewComment binds values to a comment form restricted to activeArticles.
func NewComment(values url.Values, activeArticles ChoiceSet) *Comment {
	f := &Comment{
		values:   values,
		Author:   Text(values, "author"),
		Text:     values.Get("text"),
		articles: activeArticles,
	}
	f.ArticleID, f.idErr = OptionalID(values, "article_id")
	return f
}

// Values returns the bound raw values.
func (f *Comment) Values() url.Values { return f.values }

// Clean validates the form. It returns *Invalid on failure.
func (f *Comment) Clean() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.ArticleID, validation.By(f.articleChoice)),
		validation.Field(&f.Author, validation.Required, validation.RuneLength(0, entity.MaxCommentAuthorLen)),
		validation.Field(&f.Text, validation.Required),
	)
	return finish(f.values, err)
}

func (f *Comment) articleChoice(value interface{}) error {
	if f.idErr != nil {
		return validation.NewError("invalid_choice", f.idErr.Error())
	}
	id, _ := value.(*int64)
	if id == nil {
		return validation.ErrRequired
	}
	if !f.articles.Contains(*id) {
		return validation.NewError("invalid_choice", "select a valid article; that article is not available")
	}
	return nil
}

// Build returns a new comment from the cleaned data.
func (f *Comment) Build() *entity.Comment {
	c := &entity.Comment{}
	f.ApplyTo(c)
	return c
}

// ApplyTo overwrites the cleaned fields of c.
func (f *Comment) ApplyTo(c *entity.Comment) {
	c.ArticleID = *f.ArticleID
	c.Author = f.Author
	c.Text = f.Text
}

// ArticleComment is the comment form nested under an article; the article is fixed by the caller.
type ArticleComment struct {
	values url.Values

	Author string `json:"author"`
	Text   string `json:"text"`
}

// NewArticleComment binds values. defaultAuthor fills a blank author.
func NewArticleComment(values url.Values, defaultAuthor string) *ArticleComment {
	f := &ArticleComment{
		values: values,
		Author: Text(values, "author"),
		Text:   values.Get("text"),
	}
	if f.Author == "" {
		f.Author = defaultAuthor
	}
	return f
}

// Clean validates the form. It returns *Invalid on failure.
func (f *ArticleComment) Clean() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Author, validation.Required, validation.RuneLength(0, entity.MaxCommentAuthorLen)),
		validation.Field(&f.Text, validation.Required),
	)
	return finish(f.values, err)
}

// Build returns a comment on articleID.
func (f *ArticleComment) Build(articleID int64) *entity.Comment {
	return &entity.Comment{ArticleID: articleID, Author: f.Author, Text: f.Text}
}

// finish converts a ValidateStruct result into nil, *Invalid or an internal error.
func finish(values url.Values, err error, secret ...string) error {
	if err == nil {
		return nil
	}
	errs, ierr := FromValidation(err)
	if ierr != nil {
		return ierr
	}
	return NewInvalid(values, errs, secret...)
}
