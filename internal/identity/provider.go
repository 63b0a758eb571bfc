// Package identity tracks the current principal of the client and signs it in and out
// through the job service.
package identity

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/jobstore"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// Provider is the identity context of the client.
type Provider struct {
	client   *jobstore.Client
	sessions *SessionStore
	logger   *zap.Logger
}

// NewProvider builds a provider. client must use sessions as its token source.
func NewProvider(client *jobstore.Client, sessions *SessionStore, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{client: client, sessions: sessions, logger: logger}
}

// Current returns the signed-in principal, or nil when signed out.
func (p *Provider) Current() *domain.Principal {
	return p.sessions.Principal()
}

// SignIn authenticates with email and password.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Principal, error) {
	session, err := p.client.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, authFailed(err)
	}
	return p.adopt(session)
}

// SignInWithFederatedProvider completes a Google sign-in with its authorization code.
func (p *Provider) SignInWithFederatedProvider(ctx context.Context, code string) (*domain.Principal, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.NewAuthFailed("authorization code is required", nil)
	}
	session, err := p.client.SignInFederated(ctx, domain.AuthProviderGoogle, code)
	if err != nil {
		return nil, authFailed(err)
	}
	return p.adopt(session)
}

// Register creates a password account, signs it in and records its public profile.
func (p *Provider) Register(ctx context.Context, email, password string, profile domain.Profile) (*domain.Principal, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, authFailed(err)
	}
	session, err := p.client.SignUp(ctx, dto.RegisterRequest{
		Name:     profile.Name,
		Email:    strings.TrimSpace(email),
		Password: password,
		PhotoURL: profile.PhotoURL,
	})
	if err != nil {
		return nil, authFailed(err)
	}
	principal, err := p.adopt(session)
	if err != nil {
		return nil, err
	}

	profile.Email = principal.Email
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	if _, err := p.client.RegisterProfile(ctx, profile); err != nil {
		p.logger.Warn("profile registration failed", zap.String("email", principal.Email), zap.Error(err))
	}
	return principal, nil
}

// SignOut revokes the session on the service and forgets it locally. The local session
// is cleared even when the service cannot be reached.
func (p *Provider) SignOut(ctx context.Context) error {
	if p.sessions.Token() != "" {
		if err := p.client.SignOut(ctx); err != nil {
			p.logger.Warn("remote sign out failed", zap.Error(err))
		}
	}
	if err := p.sessions.Clear(); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (p *Provider) adopt(session *jobstore.Session) (*domain.Principal, error) {
	if err := p.sessions.Set(session); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	principal := session.Principal
	return &principal, nil
}

func authFailed(err error) error {
	if apperrors.HasCode(err, apperrors.CodeAuthFailed) {
		return err
	}
	return apperrors.NewAuthFailed(apperrors.ToDomainError(err).Message, err)
}
