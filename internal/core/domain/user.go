package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdult      bool      `json:"-"`
	IsOnline     bool      `json:"-"`
	RefreshToken *string   `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// PublicUser is the subset of a User that may be returned to clients.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// UserPatch lists the mutable fields of a User. Nil fields are left untouched.
// RefreshToken is applied only when SetRefreshToken is true, a nil value clears it.
type UserPatch struct {
	IsOnline        *bool
	SetRefreshToken bool
	RefreshToken    *string
}
