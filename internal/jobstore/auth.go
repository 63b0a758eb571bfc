package jobstore

import (
	"context"
	"net/http"
	"time"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/domain"
)

// Session is a signed-in principal and its bearer token.
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Principal domain.Principal `json:"principal"`
}

func sessionFrom(resp dto.AuthResponse) *Session {
	return &Session{Token: resp.Token, ExpiresAt: resp.ExpiresAt, Principal: resp.Principal.Domain()}
}

// SignUp registers a password account.
func (c *Client) SignUp(ctx context.Context, req dto.RegisterRequest) (*Session, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return sessionFrom(out), nil
}

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return sessionFrom(out), nil
}

// SignInFederated exchanges a provider authorization code.
func (c *Client) SignInFederated(ctx context.Context, provider domain.AuthProvider, code string) (*Session, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/federated", nil, dto.FederatedLoginRequest{Provider: provider, Code: code}, &out); err != nil {
		return nil, err
	}
	return sessionFrom(out), nil
}

// SignOut revokes the current token.
func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Me returns the principal behind the current token.
func (c *Client) Me(ctx context.Context) (*domain.Principal, error) {
	var out dto.PrincipalResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	principal := out.Domain()
	return &principal, nil
}
