package courseController

import (
	"academy/database"
	"academy/middleware"
	"academy/models"
	"academy/validators"
	courseValidator "academy/validators/course"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GetContents handles GET /api/sub-topic-content?subTopicId=. Learners only
// see published items.
func GetContents(c *fiber.Ctx) error {
	subTopicID, ok := validators.QueryID(c, "subTopicId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "subTopicId is required!", nil)
	}

	query := database.Database.Db.Where("sub_topic_id = ?", subTopicID)
	if !canManage(c) {
		query = query.Where("is_published = ?", true)
	}

	var contents []models.Content
	if err := ordered(query).Find(&contents).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content fetched successfully!", contents)
}

func applyContent(ct *models.Content, reqData *courseValidator.ContentRequest) {
	ct.Title = strings.TrimSpace(reqData.Title)
	ct.ContentType = reqData.ContentType
	ct.ContentURL = reqData.ContentURL
	ct.ContentText = reqData.ContentText
	ct.Duration = reqData.Duration
	ct.IsRequired = boolOr(reqData.IsRequired, ct.IsRequired)
	ct.IsPublished = boolOr(reqData.IsPublished, ct.IsPublished)
	if reqData.OrderIndex != nil {
		ct.OrderIndex = *reqData.OrderIndex
	}
}

func CreateContent(c *fiber.Ctx) error {
	reqData := c.Locals("validatedContent").(*courseValidator.ContentRequest)
	db := database.Database.Db

	subTopicID := reqData.SubTopicID
	if subTopicID == 0 {
		subTopicID, _ = validators.QueryID(c, "subTopicId")
	}
	if subTopicID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "subTopicId is required!", nil)
	}
	if err := db.Select("id").First(&models.SubTopic{}, subTopicID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Sub-topic not found!"))
	}

	content := models.Content{SubTopicID: subTopicID, IsRequired: true, IsPublished: true}
	applyContent(&content, reqData)
	if reqData.OrderIndex == nil {
		next, err := nextOrderIndex(db, &models.Content{}, "sub_topic_id", subTopicID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		content.OrderIndex = next
	}

	if err := db.Create(&content).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Content created successfully!", content)
}

// UpdateContent handles PUT /api/sub-topic-content with the id in the body.
func UpdateContent(c *fiber.Ctx) error {
	reqData := c.Locals("validatedContent").(*courseValidator.ContentRequest)
	if reqData.ID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "id is required!", nil)
	}
	db := database.Database.Db

	var content models.Content
	if err := db.First(&content, reqData.ID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Content not found!"))
	}
	applyContent(&content, reqData)

	if err := db.Save(&content).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content updated successfully!", content)
}

// DeleteContent handles DELETE /api/sub-topic-content?id=.
func DeleteContent(c *fiber.Ctx) error {
	id, ok := validators.QueryID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "id is required!", nil)
	}
	res := database.Database.Db.Delete(&models.Content{}, id)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Content deleted successfully!", nil)
}
