package superAdminController

import (
	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/models"
	adminValidator "academy/validators/admin"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func findRole(db *gorm.DB, id uint) (models.Role, error) {
	var role models.Role
	err := db.Preload("Permissions", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("permissions.name")
	}).First(&role, id).Error
	return role, err
}

func roleNotFound(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Role not found!", nil)
	}
	return middleware.ErrorResponse(c, err)
}

func nameTaken(db *gorm.DB, model interface{}, name string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(model).Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID).Count(&count).Error
	return count > 0, err
}

func GetRoles(c *fiber.Ctx) error {
	var roles []models.Role
	if err := database.Database.Db.Preload("Permissions").Order("id").Find(&roles).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Roles fetched successfully!", roles)
}

func GetRole(c *fiber.Ctx) error {
	role, err := findRole(database.Database.Db, c.Locals("id").(uint))
	if err != nil {
		return roleNotFound(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role fetched successfully!", role)
}

func CreateRole(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRole").(*adminValidator.RoleRequest)
	db := database.Database.Db
	name := strings.TrimSpace(reqData.Name)

	taken, err := nameTaken(db, &models.Role{}, name, 0)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Role already exists!", nil)
	}

	role := models.Role{Name: name, Description: strings.TrimSpace(reqData.Description)}
	if err := db.Create(&role).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Role created successfully!", role)
}

// UpdateRole edits a custom role. System roles keep their name; only the
// description may change.
func UpdateRole(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRole").(*adminValidator.RoleRequest)
	db := database.Database.Db

	role, err := findRole(db, c.Locals("id").(uint))
	if err != nil {
		return roleNotFound(c, err)
	}

	name := strings.TrimSpace(reqData.Name)
	if role.IsSystem && name != role.Name {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "System roles cannot be renamed!", nil)
	}
	taken, err := nameTaken(db, &models.Role{}, name, role.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Role already exists!", nil)
	}

	if err := db.Model(&role).Updates(map[string]interface{}{
		"name":        name,
		"description": strings.TrimSpace(reqData.Description),
	}).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	role.Name, role.Description = name, strings.TrimSpace(reqData.Description)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully!", role)
}

func DeleteRole(c *fiber.Ctx) error {
	db := database.Database.Db

	role, err := findRole(db, c.Locals("id").(uint))
	if err != nil {
		return roleNotFound(c, err)
	}
	if role.IsSystem {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "System roles cannot be deleted!", nil)
	}

	var assigned int64
	if err := db.Model(&models.Profile{}).Where("role_id = ?", role.ID).Count(&assigned).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if assigned > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Role is assigned to users!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	logger.Log.Info("role deleted", "role", role.Name)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role deleted successfully!", nil)
}

func GetRolePermissions(c *fiber.Ctx) error {
	role, err := findRole(database.Database.Db, c.Locals("id").(uint))
	if err != nil {
		return roleNotFound(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role permissions fetched successfully!", role.Permissions)
}

// AssignRolePermissions grants every listed permission; already granted ones
// are left alone.
func AssignRolePermissions(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRolePermissions").(*adminValidator.RolePermissionsRequest)
	db := database.Database.Db

	role, err := findRole(db, c.Locals("id").(uint))
	if err != nil {
		return roleNotFound(c, err)
	}

	var found int64
	if err := db.Model(&models.Permission{}).Where("id IN ?", reqData.PermissionIDs).Count(&found).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if int(found) != len(uniqueIDs(reqData.PermissionIDs)) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unknown permission in selection!", nil)
	}

	rows := make([]models.RolePermission, 0, len(reqData.PermissionIDs))
	for _, id := range uniqueIDs(reqData.PermissionIDs) {
		rows = append(rows, models.RolePermission{RoleID: role.ID, PermissionID: id})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if role, err = findRole(db, role.ID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permissions assigned successfully!", role.Permissions)
}

func RevokeRolePermissions(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRolePermissions").(*adminValidator.RolePermissionsRequest)
	db := database.Database.Db

	role, err := findRole(db, c.Locals("id").(uint))
	if err != nil {
		return roleNotFound(c, err)
	}
	if err := db.Where("role_id = ? AND permission_id IN ?", role.ID, reqData.PermissionIDs).
		Delete(&models.RolePermission{}).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if role, err = findRole(db, role.ID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permissions revoked successfully!", role.Permissions)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func GetPermissions(c *fiber.Ctx) error {
	var permissions []models.Permission
	if err := database.Database.Db.Order("name").Find(&permissions).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permissions fetched successfully!", permissions)
}

func CreatePermission(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPermission").(*adminValidator.PermissionRequest)
	db := database.Database.Db
	name := strings.TrimSpace(reqData.Name)

	taken, err := nameTaken(db, &models.Permission{}, name, 0)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Permission already exists!", nil)
	}

	permission := models.Permission{Name: name, Description: strings.TrimSpace(reqData.Description)}
	if err := db.Create(&permission).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Permission created successfully!", permission)
}

func UpdatePermission(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPermission").(*adminValidator.PermissionRequest)
	db := database.Database.Db

	var permission models.Permission
	if err := db.First(&permission, c.Locals("id").(uint)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Permission not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	name := strings.TrimSpace(reqData.Name)
	taken, err := nameTaken(db, &models.Permission{}, name, permission.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Permission already exists!", nil)
	}

	if err := db.Model(&permission).Updates(map[string]interface{}{
		"name":        name,
		"description": strings.TrimSpace(reqData.Description),
	}).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	permission.Name, permission.Description = name, strings.TrimSpace(reqData.Description)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permission updated successfully!", permission)
}

func DeletePermission(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	var deleted int64
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Permission{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if deleted == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Permission not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permission deleted successfully!", nil)
}
