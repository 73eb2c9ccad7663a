package certificateController

import (
	"academy/certificate"
	"academy/database"
	"academy/middleware"
	"academy/models"
	adminValidator "academy/validators/admin"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// saveTemplate writes tmpl and, when it is active, deactivates every other
// template in the same transaction.
func saveTemplate(db *gorm.DB, tmpl *models.CertificateTemplate) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(tmpl).Error; err != nil {
			return err
		}
		if !tmpl.IsActive {
			return nil
		}
		return tx.Model(&models.CertificateTemplate{}).
			Where("id <> ? AND is_active = ?", tmpl.ID, true).
			Update("is_active", false).Error
	})
}

func GetTemplates(c *fiber.Ctx) error {
	var templates []models.CertificateTemplate
	if err := database.Database.Db.Order("id DESC").Find(&templates).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Templates fetched successfully!", templates)
}

func CreateTemplate(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedTemplate").(*adminValidator.TemplateRequest)

	if err := certificate.ValidateTemplate(reqData.HTML); err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"html": err.Error()})
	}

	tmpl := models.CertificateTemplate{
		Name:      strings.TrimSpace(reqData.Name),
		HTML:      reqData.HTML,
		IsActive:  reqData.IsActive != nil && *reqData.IsActive,
		CreatedBy: userID,
	}
	if err := saveTemplate(database.Database.Db, &tmpl); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Template created successfully!", tmpl)
}

func UpdateTemplate(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	reqData := c.Locals("validatedTemplate").(*adminValidator.TemplateRequest)
	db := database.Database.Db

	var tmpl models.CertificateTemplate
	if err := db.First(&tmpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Template not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if err := certificate.ValidateTemplate(reqData.HTML); err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"html": err.Error()})
	}

	tmpl.Name = strings.TrimSpace(reqData.Name)
	tmpl.HTML = reqData.HTML
	if reqData.IsActive != nil {
		tmpl.IsActive = *reqData.IsActive
	}
	if err := saveTemplate(db, &tmpl); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Template updated successfully!", tmpl)
}

func DeleteTemplate(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	res := database.Database.Db.Delete(&models.CertificateTemplate{}, id)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Template not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Template deleted successfully!", nil)
}
