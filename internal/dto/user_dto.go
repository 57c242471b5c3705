// FILE: internal/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	User        *UserResponse `json:"user"`
}

type CreateUserRequest struct {
	Username       string `json:"username" validate:"required,max=255"`
	Email          string `json:"email" validate:"required,email"`
	DisplayName    string `json:"display_name" validate:"max=255"`
	Password       string `json:"password" validate:"required,min=8"`
	Admin          bool   `json:"admin"`
	NotebookUserId string `json:"notebook_user_id" validate:"max=255"`
}

type UserResponse struct {
	Id             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Admin          bool      `json:"admin"`
	Active         bool      `json:"active"`
	NotebookUserId *string   `json:"notebook_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}
