package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/defect-track/internal/access"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

const actorKey = "auth_actor"

// AuthMiddleware validates bearer tokens and builds the per-request
// capability actor from the verified claims.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return errorutil.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return errorutil.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return errorutil.NewUnauthorized("invalid token")
	}

	actor := access.Actor{ID: claims.UserID, Roles: domain.Roles(claims.Roles)}
	c.Locals(actorKey, actor)
	return c.Next()
}

// ActorFromContext retrieves the authenticated capability set.
func ActorFromContext(c *fiber.Ctx) (access.Actor, bool) {
	val := c.Locals(actorKey)
	if val == nil {
		return access.Actor{}, false
	}
	actor, ok := val.(access.Actor)
	return actor, ok
}
