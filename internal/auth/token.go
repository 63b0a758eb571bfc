package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/job-board/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes JWT payload. The subject is the account id; the email is the
// principal's stable identifier.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the identity carried by the token.
func (c *Claims) Principal() *domain.Principal {
	return &domain.Principal{Email: c.Email, DisplayName: c.Name, PhotoURL: c.PhotoURL}
}

// GenerateToken builds and signs a JWT for the account.
func (tm *TokenManager) GenerateToken(account *domain.Account) (string, *domain.Token, error) {
	now := time.Now()
	meta := &domain.Token{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Email:     account.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(tm.ttl),
	}
	claims := &Claims{
		Email:    account.Email,
		Name:     account.Name,
		PhotoURL: account.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        meta.ID,
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(meta.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, err
	}
	return tokenString, meta, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Email == "" {
		return nil, errors.New("token has no email")
	}
	return claims, nil
}
