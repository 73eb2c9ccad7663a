package middleware

import (
	"academy/apperr"
	"academy/database"

	"github.com/gofiber/fiber/v2"
)

// HasPermission reports whether the session role grants permission.
func HasPermission(c *fiber.Ctx, permission string) (bool, error) {
	roleID, ok := c.Locals("roleId").(uint)
	if !ok {
		return false, apperr.Unauthorized("Unauthorized!")
	}

	var count int64
	err := database.Database.Db.Table("role_permissions").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ? AND permissions.name = ?", roleID, permission).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CheckPermissionMiddleware returns a middleware that checks the session role
// grants requiredPermission.
func CheckPermissionMiddleware(requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := HasPermission(c, requiredPermission)
		if err != nil {
			return ErrorResponse(c, err)
		}
		if !ok {
			return ErrorResponse(c, apperr.Forbidden("You do not have permission to access this resource!"))
		}
		return c.Next()
	}
}

// RequireRoles rejects sessions whose role is not listed.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !HasRole(c, roles...) {
			return ErrorResponse(c, apperr.Forbidden("Access denied!"))
		}
		return c.Next()
	}
}
