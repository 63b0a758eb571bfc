package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// RegisterInput carries a password registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	PhotoURL string
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	Account *domain.Account
	Token   string
	Meta    *domain.Token
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	accounts    repository.AccountRepository
	profiles    repository.ProfileRepository
	tokenMgr    *auth.TokenManager
	revocations auth.RevocationList
	federated   map[domain.AuthProvider]auth.FederatedExchanger
	bcryptCost  int
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	ProfileRepo repository.ProfileRepository
	Revocations auth.RevocationList
	// Google is nil when federated sign-in is not configured.
	Google auth.FederatedExchanger
	Logger *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	revocations := deps.Revocations
	if revocations == nil {
		revocations = auth.NewMemoryRevocationList()
	}
	federated := map[domain.AuthProvider]auth.FederatedExchanger{}
	if deps.Google != nil {
		federated[domain.AuthProviderGoogle] = deps.Google
	}
	return &AuthService{
		accounts:    deps.AccountRepo,
		profiles:    deps.ProfileRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revocations: revocations,
		federated:   federated,
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      logger,
	}
}

// Register creates a password account and its public profile.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PhotoURL:     strings.TrimSpace(input.PhotoURL),
		PasswordHash: hash,
		Provider:     domain.AuthProviderPassword,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	s.upsertProfile(ctx, account)
	s.logger.Info("account registered", zap.String("email", email))
	return s.issue(account)
}

// Login authenticates a password account. Every failure is reported as AUTH_FAILED.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAuthFailed("invalid credentials", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if account.PasswordHash == "" {
		return nil, apperrors.NewAuthFailed("invalid credentials", nil)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewAuthFailed("invalid credentials", nil)
	}
	return s.issue(account)
}

// LoginFederated exchanges an authorization code with the named provider, creating the
// account on first sign-in.
func (s *AuthService) LoginFederated(ctx context.Context, provider domain.AuthProvider, code string) (*AuthResult, error) {
	if provider == "" {
		provider = domain.AuthProviderGoogle
	}
	exchanger, ok := s.federated[provider]
	if !ok {
		return nil, apperrors.NewAuthFailed("sign-in provider not available", nil)
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.NewValidationError("code required", nil)
	}

	identity, err := exchanger.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("federated exchange failed", zap.String("provider", string(provider)), zap.Error(err))
		return nil, apperrors.NewAuthFailed("sign-in failed", err)
	}

	account, err := s.accounts.GetByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		account = &domain.Account{
			Email:    identity.Email,
			Name:     identity.Name,
			PhotoURL: identity.PhotoURL,
			Provider: identity.Provider,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, apperrors.MapError(err)
		}
	case err != nil:
		return nil, apperrors.MapError(err)
	default:
		changed := false
		if account.Name == "" && identity.Name != "" {
			account.Name = identity.Name
			changed = true
		}
		if account.PhotoURL == "" && identity.PhotoURL != "" {
			account.PhotoURL = identity.PhotoURL
			changed = true
		}
		if changed {
			if err := s.accounts.Update(ctx, account); err != nil {
				return nil, apperrors.MapError(err)
			}
		}
	}
	s.upsertProfile(ctx, account)
	return s.issue(account)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.NewUnauthorized("please log in first")
	}
	until := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(ctx, claims.ID, until); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Me returns the account behind the principal.
func (s *AuthService) Me(ctx context.Context, principal *domain.Principal) (*domain.Account, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("please log in first")
	}
	account, err := s.accounts.GetByEmail(ctx, principal.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("account not found")
		}
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Revocations exposes the revocation list for middleware usage.
func (s *AuthService) Revocations() auth.RevocationList {
	return s.revocations
}

func (s *AuthService) issue(account *domain.Account) (*AuthResult, error) {
	token, meta, err := s.tokenMgr.GenerateToken(account)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{Account: account, Token: token, Meta: meta}, nil
}

func (s *AuthService) upsertProfile(ctx context.Context, account *domain.Account) {
	if s.profiles == nil {
		return
	}
	profile := &domain.Profile{Name: account.Name, Email: account.Email, PhotoURL: account.PhotoURL}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.logger.Warn("profile upsert failed", zap.String("email", account.Email), zap.Error(err))
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", apperrors.NewValidationError("email required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperrors.NewValidationError("invalid email", map[string]any{"email": email})
	}
	return email, nil
}
