// Package users implements registration, login, and bearer-token
// authentication for the catalog's user accounts.
package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptchan/pkg/auth"
)

// User is a registered account. The password digest is never serialized.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity returns the authenticated view of u.
func (u User) Identity() *auth.Identity {
	return &auth.Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// RegisterCommand carries the data needed to create an account.
type RegisterCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// LoginCommand carries the credentials presented at login.
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshCommand carries the refresh token exchanged for a new session.
type RefreshCommand struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Session is returned by register, login, and refresh.
// Token is the access token presented as a bearer credential.
type Session struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
