package dto

import (
	"time"

	"github.com/spec-kit/job-board/internal/domain"
)

// RegisterRequest payload for password registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PhotoURL string `json:"photo_url"`
}

// LoginRequest payload for password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FederatedLoginRequest payload for provider sign-in.
type FederatedLoginRequest struct {
	Provider domain.AuthProvider `json:"provider"`
	Code     string              `json:"code"`
}

// PrincipalResponse is the wire form of the signed-in identity.
type PrincipalResponse struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// NewPrincipalResponse maps a principal.
func NewPrincipalResponse(p domain.Principal) PrincipalResponse {
	return PrincipalResponse{Email: p.Email, DisplayName: p.DisplayName, PhotoURL: p.PhotoURL}
}

// Domain maps the response back to a principal.
func (r PrincipalResponse) Domain() domain.Principal {
	return domain.Principal{Email: r.Email, DisplayName: r.DisplayName, PhotoURL: r.PhotoURL}
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Principal PrincipalResponse `json:"principal"`
}

// ProfileRequest payload for POST /users.
type ProfileRequest struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	PhotoURL  string     `json:"photo_url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Domain converts the request into a profile.
func (r ProfileRequest) Domain() domain.Profile {
	profile := domain.Profile{Name: r.Name, Email: r.Email, PhotoURL: r.PhotoURL}
	if r.CreatedAt != nil {
		profile.CreatedAt = *r.CreatedAt
	}
	return profile
}

// ProfileResponse is the stored profile.
type ProfileResponse struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProfileResponse maps a profile.
func NewProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{Name: p.Name, Email: p.Email, PhotoURL: p.PhotoURL, CreatedAt: p.CreatedAt}
}
