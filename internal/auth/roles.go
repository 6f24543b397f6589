package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// RequireRole ensures the authenticated actor has one of the allowed
// roles. With no arguments it only requires authentication.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return errorutil.NewUnauthorized("authentication required")
		}
		if len(allowed) == 0 {
			return c.Next()
		}
		if !actor.Roles.HasAny(allowed...) {
			return errorutil.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
