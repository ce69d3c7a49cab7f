// Package account provides HTTP handlers for registration, activation,
// login and logout, and the user profile endpoints.
package account

import (
	"time"

	"blog-platform/internal/domain/entity"
	accountUC "blog-platform/internal/usecase/account"
)

// UserDTO represents the JSON structure for user data transfer. The
// password hash never leaves the server.
type UserDTO struct {
	ID         int64     `json:"id" example:"7"`
	Username   string    `json:"username" example:"alice"`
	Email      string    `json:"email" example:"alice@example.com"`
	FirstName  string    `json:"first_name" example:"Alice"`
	LastName   string    `json:"last_name" example:"Liddell"`
	IsActive   bool      `json:"is_active" example:"true"`
	DateJoined time.Time `json:"date_joined" example:"2025-10-26T12:00:00Z"`
}

// ToUserDTO converts a user entity.
func ToUserDTO(u *entity.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
	}
}

// ProfileDTO is a user with the number of articles they wrote.
type ProfileDTO struct {
	UserDTO
	ArticleCount int64 `json:"article_count" example:"3"`
}

func toProfileDTO(p *accountUC.Profile) ProfileDTO {
	return ProfileDTO{UserDTO: ToUserDTO(p.User), ArticleCount: p.ArticleCount}
}

// LoginResponse accompanies the redirect after a login. Token is the
// session token for clients that send it as a bearer token.
type LoginResponse struct {
	Token    string `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
	Location string `json:"location" example:"/"`
}

// loginFailed is the body of a rejected login.
type loginFailed struct {
	HasError bool `json:"has_error" example:"true"`
}
