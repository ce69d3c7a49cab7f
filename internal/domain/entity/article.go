// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, Comment, Tag and User,
// along with their invariants and domain-specific errors.
package entity

import "time"

// ArticleStatus is the lifecycle state of an article.
type ArticleStatus string

const (
	// StatusActive articles appear in the primary listing.
	StatusActive ArticleStatus = "active"
	// StatusArchived articles are hidden from the primary listing but stay retrievable.
	StatusArchived ArticleStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

// MinTitleLength is the length a title must exceed.
const MinTitleLength = 10

// Article represents a blog article written by a registered user.
// Tags and Category are populated by repositories that join them; they may be nil
// when only the base row was loaded.
type Article struct {
	ID         int64
	Title      string
	AuthorID   int64
	AuthorName string
	Text       string
	CategoryID *int64
	Category   *Category
	Status     ArticleStatus
	Tags       []Tag
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsActive reports whether the article is visible in the primary listing.
func (a *Article) IsActive() bool {
	return a.Status == StatusActive
}

// Archive moves the article to the archived state.
// It returns false when the article was already archived.
func (a *Article) Archive(now time.Time) bool {
	if a.Status == StatusArchived {
		return false
	}
	a.Status = StatusArchived
	a.UpdatedAt = now
	return true
}

// IsOwnedBy reports whether userID is the author of the article.
func (a *Article) IsOwnedBy(userID int64) bool {
	return userID > 0 && a.AuthorID == userID
}

// TagNames returns the names of the attached tags in their stored order.
func (a *Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}
	return names
}
