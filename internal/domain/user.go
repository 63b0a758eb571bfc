package domain

import "time"

// Account is the credential record behind a Principal.
type Account struct {
	ID           string
	Email        string
	Name         string
	PhotoURL     string
	PasswordHash string
	Provider     AuthProvider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the identity view of the account.
func (a *Account) Principal() Principal {
	return Principal{Email: a.Email, DisplayName: a.Name, PhotoURL: a.PhotoURL}
}

// Profile is the public user record registered through /users.
type Profile struct {
	Name      string
	Email     string
	PhotoURL  string
	CreatedAt time.Time
}
