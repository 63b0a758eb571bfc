package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// FederatedIdentity is the profile returned by an external identity provider.
type FederatedIdentity struct {
	Provider domain.AuthProvider
	Subject  string
	Email    string
	Name     string
	PhotoURL string
}

// FederatedExchanger turns an authorization code into a verified identity.
type FederatedExchanger interface {
	Exchange(ctx context.Context, code string) (*FederatedIdentity, error)
}

// GoogleExchanger implements the authorization-code flow against Google.
type GoogleExchanger struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewGoogleExchanger builds the exchanger from config. Endpoint overrides are for tests.
func NewGoogleExchanger(cfg config.OAuthConfig, endpoint *oauth2.Endpoint, userInfoURL string) *GoogleExchanger {
	ep := endpoints.Google
	if endpoint != nil {
		ep = *endpoint
	}
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}
	return &GoogleExchanger{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     ep,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
	}
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the code for a token and reads the user's profile.
func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (*FederatedIdentity, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("incomplete user info")
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("email %s not verified", info.Email)
	}

	return &FederatedIdentity{
		Provider: domain.AuthProviderGoogle,
		Subject:  info.Sub,
		Email:    info.Email,
		Name:     info.Name,
		PhotoURL: info.Picture,
	}, nil
}
