package entity

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Field limits shared by forms and the schema.
const (
	MaxTitleLength        = 200
	MaxCommentAuthorLen   = 40
	MaxUsernameLength     = 150
	MaxCategoryNameLength = 100
)

// Validation codes attached to ValidationError.
const (
	CodeTooShort           = "too_short"
	CodeTitleTextDuplicate = "title_text_duplicate"
	CodeInvalidUsername    = "invalid_username"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// ValidateArticleContent checks the title and text invariants of an article.
// The title must be longer than MinTitleLength characters and the text must not repeat it.
func ValidateArticleContent(title, text string) error {
	if utf8.RuneCountInString(title) <= MinTitleLength {
		return &ValidationError{
			Field:   "title",
			Code:    CodeTooShort,
			Message: fmt.Sprintf("title must be longer than %d characters", MinTitleLength),
		}
	}
	if text == title {
		return &ValidationError{
			Field:   "text",
			Code:    CodeTitleTextDuplicate,
			Message: "text cannot be the same as the title",
		}
	}
	return nil
}

// ValidateUsername checks the allowed username alphabet and length.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n == 0 {
		return &ValidationError{Field: "username", Code: "required", Message: "username is required"}
	}
	if n > MaxUsernameLength {
		return &ValidationError{
			Field:   "username",
			Code:    "length_out_of_range",
			Message: fmt.Sprintf("username must be at most %d characters", MaxUsernameLength),
		}
	}
	if !usernamePattern.MatchString(username) {
		return &ValidationError{
			Field:   "username",
			Code:    CodeInvalidUsername,
			Message: "username must contain only letters, digits and @/./+/-/_",
		}
	}
	return nil
}
