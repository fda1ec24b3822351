package middleware

import (
	"slices"

	"go-erp/internal/workflow"
	"go-erp/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireRole restricts a route to users holding one of the given roles.
func RequireRole(roles ...workflow.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !slices.Contains(roles, claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient permissions",
			})
		}

		return c.Next()
	}
}
