// Package article provides HTTP handlers for article-related endpoints.
// It includes the partitioned index, the full search, the detail page with
// comments, and the author-only create, update and archive handlers.
package article

import (
	"time"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/comment"
	"blog-platform/internal/infra/security"
	"blog-platform/internal/pkg/search"
)

// AuthorDTO is the author of an article.
type AuthorDTO struct {
	ID       int64  `json:"id" example:"7"`
	Username string `json:"username" example:"alice"`
}

// CategoryDTO is the category of an article.
type CategoryDTO struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"golang"`
}

// DTO represents the JSON structure for article data transfer.
type DTO struct {
	ID        int64        `json:"id" example:"1"`
	Title     string       `json:"title" example:"Go 1.23 のイテレータ入門"`
	Text      string       `json:"text" example:"range over func が使えるようになりました。"`
	HTML      string       `json:"html" example:"range over func が使えるようになりました。"`
	Status    string       `json:"status" example:"active" enums:"active,archived"`
	Author    AuthorDTO    `json:"author"`
	Category  *CategoryDTO `json:"category"`
	Tags      []string     `json:"tags" example:"go,iterators"`
	CreatedAt time.Time    `json:"created_at" example:"2025-10-26T12:00:00Z"`
	UpdatedAt time.Time    `json:"updated_at" example:"2025-10-26T12:00:00Z"`
}

// ToDTO converts an article entity.
func ToDTO(a *entity.Article) DTO {
	out := DTO{
		ID:        a.ID,
		Title:     a.Title,
		Text:      a.Text,
		HTML:      security.HTML(a.Text),
		Status:    string(a.Status),
		Author:    AuthorDTO{ID: a.AuthorID, Username: a.AuthorName},
		Tags:      a.TagNames(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if a.Category != nil {
		out.Category = &CategoryDTO{ID: a.Category.ID, Name: a.Category.Name}
	} else if a.CategoryID != nil {
		out.Category = &CategoryDTO{ID: *a.CategoryID}
	}
	return out
}

func toDTOs(articles []*entity.Article) []DTO {
	out := make([]DTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, ToDTO(a))
	}
	return out
}

// IndexResponse is the article index: a page of active articles and every
// archived article.
type IndexResponse struct {
	Search   string                   `json:"search" example:"go"`
	Articles pagination.Response[DTO] `json:"articles"`
	Archived []DTO                    `json:"archived"`
}

// DetailResponse is one article with a page of its comments.
type DetailResponse struct {
	Article  DTO                              `json:"article"`
	Comments pagination.Response[comment.DTO] `json:"comments"`
}

// SearchResponse is one page of the full search.
type SearchResponse struct {
	Criteria search.Criteria          `json:"criteria"`
	Results  pagination.Response[DTO] `json:"results"`
}
