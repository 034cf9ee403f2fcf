package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hospital-directory/internal/domain"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

// RequireRole ensures the principal bound by AuthMiddleware holds role.
// It must be chained after AuthMiddleware.Handle. It panics on an unknown
// role so a misconfigured route fails at startup.
func RequireRole(role domain.Role) fiber.Handler {
	if !role.Valid() {
		panic(fmt.Sprintf("auth: RequireRole with unknown role %q", role))
	}
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(MsgNoToken)
		}
		if principal.Role() != role {
			return apperrors.NewForbidden(MsgAccessDenied)
		}
		return c.Next()
	}
}

// RequireAdmin is RequireRole(domain.RoleAdmin).
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
