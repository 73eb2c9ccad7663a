package courseController

import (
	"academy/database"
	"academy/middleware"
	"academy/models"
	courseValidator "academy/validators/course"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetModules lists modules. Learners only see active ones.
func GetModules(c *fiber.Ctx) error {
	query := database.Database.Db.Model(&models.Module{})
	if !canManage(c) {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var modules []models.Module
	if err := query.Order("id ASC").Find(&modules).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", modules)
}

// GetModule returns a module with its levels in display order.
func GetModule(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	manage := canManage(c)

	query := database.Database.Db.Preload("Levels", func(db *gorm.DB) *gorm.DB {
		if !manage {
			db = db.Where("is_active = ?", true)
		}
		return ordered(db)
	})
	if !manage {
		query = query.Where("is_active = ?", true)
	}

	var module models.Module
	if err := query.First(&module, moduleID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Module not found!"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully!", module)
}

func CreateModule(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedModule").(*courseValidator.ModuleRequest)

	module := models.Module{
		Title:       strings.TrimSpace(reqData.Title),
		Description: reqData.Description,
		Price:       reqData.Price,
		IsActive:    boolOr(reqData.IsActive, true),
		CreatedBy:   userID,
	}
	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func UpdateModule(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	reqData := c.Locals("validatedModule").(*courseValidator.ModuleRequest)
	db := database.Database.Db

	var module models.Module
	if err := db.First(&module, moduleID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Module not found!"))
	}

	module.Title = strings.TrimSpace(reqData.Title)
	module.Description = reqData.Description
	module.Price = reqData.Price
	module.IsActive = boolOr(reqData.IsActive, module.IsActive)

	if err := db.Save(&module).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule removes a module and everything under it. Modules with
// enrollments cannot be deleted; deactivate them instead.
func DeleteModule(c *fiber.Ctx) error {
	moduleID := c.Locals("id").(uint)
	db := database.Database.Db

	var module models.Module
	if err := db.First(&module, moduleID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Module not found!"))
	}

	var enrolled int64
	if err := db.Model(&models.Enrollment{}).Where("module_id = ?", moduleID).Count(&enrolled).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if enrolled > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Module has enrollments, deactivate it instead!", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var levelIDs []uint
		if err := tx.Model(&models.Level{}).Where("module_id = ?", moduleID).Pluck("id", &levelIDs).Error; err != nil {
			return err
		}
		if err := deleteLevels(tx, levelIDs); err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", moduleID).Delete(&models.ModuleTest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&module).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}
