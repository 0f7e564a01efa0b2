package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/jobboard/internal/domain"
	apperrors "github.com/spec-kit/jobboard/pkg/util"
)

const (
	identityKey  = "auth_identity"
	bearerPrefix = "Bearer "
)

// TokenVerifier decodes a bearer token into a caller identity.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// AuthMiddleware validates bearer tokens and attaches the caller identity.
//
// The identity is trusted as embedded in the token; the user record is not
// re-read on each request.
type AuthMiddleware struct {
	tokens TokenVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return apperrors.NewUnauthenticated("no token provided, authorization denied")
	}

	identity, err := m.tokens.Verify(strings.TrimPrefix(authHeader, bearerPrefix))
	if err != nil {
		return apperrors.NewUnauthenticated("token is not valid")
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	if !ok || identity.ID == "" {
		return domain.Identity{}, false
	}
	return identity, true
}
