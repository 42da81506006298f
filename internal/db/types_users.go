package db

import (
	"time"

	"github.com/proajob/proajob/internal/types"
)

// User represents an account row
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// PasswordSet reports whether the account can log in with a password.
func (u *User) PasswordSet() bool {
	return u.PasswordHash != ""
}

// Public returns the API projection of u.
func (u *User) Public() *types.User {
	return &types.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
