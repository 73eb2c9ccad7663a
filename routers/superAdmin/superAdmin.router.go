package superAdminRoutes

import (
	superAdminController "academy/controllers/superAdmin"
	"academy/middleware"
	"academy/validators"
	adminValidator "academy/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/api/admin", middleware.JWTMiddleware)
	id := validators.ParamID("id")

	roles := adminGroup.Group("/roles", middleware.CheckPermissionMiddleware("roles.manage"))
	roles.Get("", superAdminController.GetRoles)
	roles.Post("", adminValidator.SaveRole(), superAdminController.CreateRole)
	roles.Get("/:id", id, superAdminController.GetRole)
	roles.Put("/:id", id, adminValidator.SaveRole(), superAdminController.UpdateRole)
	roles.Delete("/:id", id, superAdminController.DeleteRole)
	roles.Get("/:id/permissions", id, superAdminController.GetRolePermissions)
	roles.Post("/:id/permissions", id, adminValidator.RolePermissions(), superAdminController.AssignRolePermissions)
	roles.Delete("/:id/permissions", id, adminValidator.RolePermissions(), superAdminController.RevokeRolePermissions)

	permissions := adminGroup.Group("/permissions", middleware.CheckPermissionMiddleware("roles.manage"))
	permissions.Get("", superAdminController.GetPermissions)
	permissions.Post("", adminValidator.SavePermission(), superAdminController.CreatePermission)
	permissions.Put("/:id", id, adminValidator.SavePermission(), superAdminController.UpdatePermission)
	permissions.Delete("/:id", id, superAdminController.DeletePermission)

	users := adminGroup.Group("/users", middleware.CheckPermissionMiddleware("users.manage"))
	users.Get("", adminValidator.ListUsers(), superAdminController.UserList)
	users.Patch("/:id", id, adminValidator.PatchUser(), superAdminController.PatchUser)
	users.Delete("/:id", id, superAdminController.DeleteUser)

	adminGroup.Get("/dashboard/stats", middleware.CheckPermissionMiddleware("dashboard.view"), superAdminController.GetDashboardStats)
	adminGroup.Get("/enrollments/export", middleware.CheckPermissionMiddleware("enrollments.manage"), superAdminController.ExportEnrollments)
}
