package supportControllers

import (
	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/models"
	"academy/utils"
	supportValidators "academy/validators/support"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CreateContactMessage stores a message from the public contact form.
func CreateContactMessage(c *fiber.Ctx) error {
	reqData := c.Locals("validatedContact").(*supportValidators.ContactRequest)

	msg := models.ContactMessage{
		Name:    strings.TrimSpace(reqData.Name),
		Email:   strings.ToLower(strings.TrimSpace(reqData.Email)),
		Subject: strings.TrimSpace(reqData.Subject),
		Message: strings.TrimSpace(reqData.Message),
	}
	if err := database.Database.Db.Create(&msg).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	logger.Log.Info("contact message received", "message_id", msg.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Thank you, your message has been received!", fiber.Map{
		"id": msg.ID,
	})
}

// ListContactMessages is the admin inbox, newest first.
func ListContactMessages(c *fiber.Ctx) error {
	reqData := c.Locals("validatedContactList").(*supportValidators.ContactListQuery)
	page, limit, offset := reqData.Normalize()

	db := database.Database.Db.Model(&models.ContactMessage{})
	if reqData.Unread {
		db = db.Where("is_read = ?", false)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var messages []models.ContactMessage
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&messages).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Messages fetched successfully!", fiber.Map{
		"messages":   messages,
		"pagination": utils.PageMeta(total, page, limit),
	})
}

func PatchContactMessage(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	reqData := c.Locals("validatedContact").(*supportValidators.ContactPatchRequest)

	res := database.Database.Db.Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", *reqData.IsRead)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Message not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Message updated successfully!", nil)
}

func DeleteContactMessage(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)

	res := database.Database.Db.Delete(&models.ContactMessage{}, id)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Message not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Message deleted successfully!", nil)
}
