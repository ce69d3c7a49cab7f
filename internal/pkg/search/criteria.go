package search

import (
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blog-platform/internal/form"
)

// Validation codes reported under form.NonField.
const (
	CodeTextAndAuthorEmpty        = "text_and_author_empty"
	CodeTextSearchCriteriaEmpty   = "text_search_criteria_empty"
	CodeAuthorSearchCriteriaEmpty = "author_search_criteria_empty"
)

// Criteria is the input of the full article search.
type Criteria struct {
	Text          string `json:"text"`
	InTitle       bool   `json:"in_title"`
	InText        bool   `json:"in_text"`
	InTags        bool   `json:"in_tags"`
	InCommentText bool   `json:"in_comment_text"`

	Author        string `json:"author"`
	ArticleAuthor bool   `json:"article_author"`
	CommentAuthor bool   `json:"comment_author"`
}

// ParseCriteria reads criteria from query values. Every flag is a checkbox:
// an absent flag is off.
func ParseCriteria(values url.Values) Criteria {
	c := Criteria{
		Text:   strings.TrimSpace(values.Get("text")),
		Author: strings.TrimSpace(values.Get("author")),
	}
	c.InTitle, _ = form.Bool(values, "in_title")
	c.InText, _ = form.Bool(values, "in_text")
	c.InTags, _ = form.Bool(values, "in_tags")
	c.InCommentText, _ = form.Bool(values, "in_comment_text")
	c.ArticleAuthor, _ = form.Bool(values, "article_author")
	c.CommentAuthor, _ = form.Bool(values, "comment_author")
	return c
}

// Validate checks field lengths and the cross-field rules. Failures are
// returned as *form.Invalid echoing values.
func (c Criteria) Validate(values url.Values) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Text, validation.RuneLength(0, MaxQueryLength)),
		validation.Field(&c.Author, validation.RuneLength(0, MaxQueryLength)),
	)
	errs, ierr := form.FromValidation(err)
	if ierr != nil {
		return ierr
	}

	switch {
	case c.Text == "" && c.Author == "":
		errs.Add(form.NonField, CodeTextAndAuthorEmpty, "no search text or author provided")
	default:
		if c.Text != "" && !(c.InTitle || c.InText || c.InTags || c.InCommentText) {
			errs.Add(form.NonField, CodeTextSearchCriteriaEmpty,
				"one of the following should be checked: in title, in text, in tags, in comment text")
		}
		if c.Author != "" && !(c.ArticleAuthor || c.CommentAuthor) {
			errs.Add(form.NonField, CodeAuthorSearchCriteriaEmpty,
				"one of the following should be checked: article author, comment author")
		}
	}

	if len(errs) > 0 {
		return form.NewInvalid(values, errs)
	}
	return nil
}

// Expr builds the predicate of validated criteria. Unchecked scopes are left
// out entirely. A present side with no scopes compiles to an empty Or, which
// matches nothing.
func (c Criteria) Expr() Expr {
	var textExpr, authorExpr Expr

	if c.Text != "" {
		or := Or{}
		if c.InTitle {
			or = append(or, Cond{Field: FieldTitle, Op: OpContains, Value: c.Text})
		}
		if c.InText {
			or = append(or, Cond{Field: FieldText, Op: OpContains, Value: c.Text})
		}
		if c.InTags {
			or = append(or, Cond{Field: FieldTagName, Op: OpIExact, Value: c.Text})
		}
		if c.InCommentText {
			or = append(or, Cond{Field: FieldCommentText, Op: OpContains, Value: c.Text})
		}
		textExpr = or
	}

	if c.Author != "" {
		or := Or{}
		if c.ArticleAuthor {
			or = append(or, Cond{Field: FieldArticleAuthor, Op: OpExact, Value: c.Author})
		}
		if c.CommentAuthor {
			or = append(or, Cond{Field: FieldCommentAuthor, Op: OpExact, Value: c.Author})
		}
		authorExpr = or
	}

	return AllOf(textExpr, authorExpr)
}
