// Package comment provides HTTP handlers for the comment endpoints.
package comment

import (
	"time"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/infra/security"
)

// DTO represents the JSON structure for comment data transfer.
type DTO struct {
	ID        int64     `json:"id" example:"1"`
	ArticleID int64     `json:"article_id" example:"3"`
	Author    string    `json:"author" example:"visitor"`
	Text      string    `json:"text" example:"Nice write-up."`
	HTML      string    `json:"html" example:"Nice write-up."`
	CreatedAt time.Time `json:"created_at" example:"2025-10-26T12:00:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2025-10-26T12:00:00Z"`
}

// ToDTO converts a comment entity.
func ToDTO(c *entity.Comment) DTO {
	return DTO{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		Author:    c.Author,
		Text:      c.Text,
		HTML:      security.HTML(c.Text),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
