package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID
	Username       string
	Email          string
	DisplayName    string
	Admin          bool
	Active         bool
	NotebookUserId *string
	PasswordHash   *string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
