// Package category provides HTTP handlers for the category endpoints.
package category

import "blog-platform/internal/domain/entity"

// DTO represents the JSON structure for category data transfer.
type DTO struct {
	ID   int64  `json:"id" example:"1"`
	Name string `json:"name" example:"golang"`
}

// ToDTO converts a category entity.
func ToDTO(c *entity.Category) DTO {
	return DTO{ID: c.ID, Name: c.Name}
}
