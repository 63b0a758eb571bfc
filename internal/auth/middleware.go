package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/domain"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	claimsKey    = "auth_claims"
)

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens      *TokenManager
	revocations RevocationList
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, revocations RevocationList) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, revocations: revocations}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if revoked {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	c.Locals(principalKey, claims.Principal())
	c.Locals(claimsKey, claims)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*domain.Principal)
	return principal, ok && principal != nil
}

// ClaimsFromContext retrieves the parsed token claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}
