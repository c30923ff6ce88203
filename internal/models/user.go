package models

import "github.com/google/uuid"

// User is an account known to the identity layer. Username doubles as the
// player nickname inside parties, so it must stay stable once chosen.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsAdmin bool `json:"is_admin"`
}
