package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskboard/pkg/apperr"
	"github.com/artem13815/taskboard/pkg/auth"
)

const (
	localIdentity = "identity"
	localToken    = "token"
)

// Verifier turns a bearer token into an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// NewAuthMiddleware returns a Fiber middleware that verifies the bearer token.
// A missing token yields 401, a token that fails verification 400.
// On success the identity is available through IdentityFrom.
func NewAuthMiddleware(verifier Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "access denied"})
		}
		tokenStr := extractToken(authHeader)
		if tokenStr == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "empty token"})
		}
		identity, err := verifier.Verify(c.Context(), tokenStr)
		if err != nil {
			if errors.Is(err, apperr.ErrInvalidToken) {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid token"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to verify token"})
		}
		c.Locals(localIdentity, identity)
		c.Locals(localToken, tokenStr)
		return c.Next()
	}
}

// Support both "Bearer <token>" and "<token>" (no prefix).
func extractToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	if strings.EqualFold(header, "Bearer") {
		return ""
	}
	return header
}

// IdentityFrom returns the identity stored by the auth middleware.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(localIdentity).(auth.Identity)
	return identity, ok && identity.ID != ""
}

// TokenFrom returns the raw token accepted by the auth middleware.
func TokenFrom(c *fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}
