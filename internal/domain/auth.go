package domain

import "time"

// AuthProvider identifies how an account proves its identity.
type AuthProvider string

const (
	AuthProviderPassword AuthProvider = "password"
	AuthProviderGoogle   AuthProvider = "google"
)

// Token represents issued access token metadata.
type Token struct {
	ID        string
	AccountID string
	Email     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}
