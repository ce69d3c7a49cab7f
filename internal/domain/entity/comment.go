package entity

import "time"

// Comment is a flat (non-threaded) remark attached to exactly one article.
// Author is free text; visitors without an account may comment.
type Comment struct {
	ID        int64
	ArticleID int64
	Author    string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
