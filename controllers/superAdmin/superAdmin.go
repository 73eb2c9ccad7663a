package superAdminController

import (
	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/models"
	"academy/utils"
	adminValidator "academy/validators/admin"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserList returns users with their profile and role, filtered by name/email
// search and role name.
func UserList(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUserList").(*adminValidator.UserListQuery)
	page, limit, offset := reqData.Normalize()

	db := database.Database.Db.Model(&models.User{})
	if search := strings.ToLower(strings.TrimSpace(reqData.Search)); search != "" {
		like := "%" + search + "%"
		db = db.Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?", like, like)
	}
	if role := strings.TrimSpace(reqData.Role); role != "" {
		db = db.Where("users.id IN (?)", database.Database.Db.Table("profiles").
			Select("profiles.user_id").
			Joins("JOIN roles ON roles.id = profiles.role_id").
			Where("roles.name = ?", role))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var users []models.User
	if err := db.Preload("Profile.Role").
		Order("users.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", fiber.Map{
		"users":      users,
		"pagination": utils.PageMeta(total, page, limit),
	})
}

// PatchUser changes a user's role, membership fee flag or active flag.
func PatchUser(c *fiber.Ctx) error {
	actorID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id := c.Locals("id").(uint)
	reqData := c.Locals("validatedUserPatch").(*adminValidator.UserPatchRequest)
	db := database.Database.Db

	var user models.User
	if err := db.Preload("Profile").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if user.Profile == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Profile not found!", nil)
	}
	if id == actorID && reqData.IsActive != nil && !*reqData.IsActive {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot deactivate your own account!", nil)
	}

	profileUpdates := map[string]interface{}{}
	if reqData.RoleID != nil {
		var count int64
		if err := db.Model(&models.Role{}).Where("id = ?", *reqData.RoleID).Count(&count).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if count == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Role not found!", nil)
		}
		profileUpdates["role_id"] = *reqData.RoleID
	}
	if reqData.MembershipFeePaid != nil {
		profileUpdates["membership_fee_paid"] = *reqData.MembershipFeePaid
	}
	if len(profileUpdates) == 0 && reqData.IsActive == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if len(profileUpdates) > 0 {
			if err := tx.Model(&models.Profile{}).Where("id = ?", user.Profile.ID).Updates(profileUpdates).Error; err != nil {
				return err
			}
		}
		if reqData.IsActive != nil {
			return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", *reqData.IsActive).Error
		}
		return nil
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	logger.Log.Info("user updated by admin", "user_id", user.ID, "actor_id", actorID)

	if err := db.Preload("Profile.Role").First(&user, user.ID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", user)
}

// DeleteUser removes the user together with their profile, enrollments,
// attempts and login history.
func DeleteUser(c *fiber.Ctx) error {
	actorID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	id := c.Locals("id").(uint)
	if id == actorID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot delete your own account!", nil)
	}

	var deleted int64
	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.TestAttempt{},
			&models.Enrollment{},
			&models.LoginTracking{},
			&models.Profile{},
		} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if deleted == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	logger.Log.Info("user deleted by admin", "user_id", id, "actor_id", actorID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully!", nil)
}
