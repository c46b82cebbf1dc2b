package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}

// User represents a registered account. Deleting a user cascades to all
// of its files at the schema level.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PhoneNumber  string
	PasswordHash []byte
	Birthdate    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
