package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hospital-directory/internal/auth"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

var errInvalidBody = apperrors.NewValidationError("Invalid request body", nil)

// actorID returns the id of the authenticated caller, if any.
func actorID(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.User.ID
	}
	return ""
}
