package auth

import (
	"time"

	"github.com/taskhive/taskhive/internal/authz"
)

// Account is the credential view of a user record.
type Account struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	Role         authz.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
