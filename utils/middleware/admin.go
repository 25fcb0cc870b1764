package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/model"
	"github.com/learnhub/learnhub-api/utils/response"
)

// RequireAdmin middleware ensures the user has admin role
func RequireAdmin() fiber.Handler {
	return RequireRole(model.RoleAdmin)
}

// RequireInstructor middleware ensures the user has instructor role
func RequireInstructor() fiber.Handler {
	return RequireRole(model.RoleInstructor)
}

// RequireRole ensures the authenticated user carries the given role. Must
// run after Required(), which populates the locals.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok || userID == 0 {
			return response.Unauthorized(c, "Authentication required")
		}

		userRole, _ := c.Locals("userRole").(string)
		if userRole != role {
			return response.Forbidden(c, "Insufficient permissions")
		}

		return c.Next()
	}
}
