package courseController

import (
	"academy/apperr"
	"academy/database"
	"academy/middleware"
	"academy/models"
	"academy/utils"
	"academy/validators"
	courseValidator "academy/validators/course"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UploadDir is where sub-topic attachments are written.
var UploadDir = "./uploads"

// GetSubTopics handles GET /api/sub-topics?levelId=.
func GetSubTopics(c *fiber.Ctx) error {
	levelID, ok := validators.QueryID(c, "levelId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "levelId is required!", nil)
	}
	manage := canManage(c)

	query := database.Database.Db.Where("level_id = ?", levelID).
		Preload("Contents", func(db *gorm.DB) *gorm.DB {
			if !manage {
				db = db.Where("is_published = ?", true)
			}
			return ordered(db)
		})
	if !manage {
		query = query.Where("is_active = ?", true)
	}

	var subTopics []models.SubTopic
	if err := ordered(query).Find(&subTopics).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sub-topics fetched successfully!", subTopics)
}

// linkTopic points a level's topic placeholder at the sub-topic. A topic that
// is already linked to a different sub-topic is rejected.
func linkTopic(tx *gorm.DB, levelID, topicID, subTopicID uint) error {
	var topic models.LevelTopic
	if err := tx.Where("id = ? AND level_id = ?", topicID, levelID).First(&topic).Error; err != nil {
		return notFound(err, "Topic not found in this level!")
	}
	if topic.SubTopicID != nil && *topic.SubTopicID != subTopicID {
		return apperr.Conflict("Topic is already linked to another sub-topic!")
	}
	return tx.Model(&topic).Update("sub_topic_id", subTopicID).Error
}

func applySubTopic(st *models.SubTopic, reqData *courseValidator.SubTopicRequest) {
	st.Title = strings.TrimSpace(reqData.Title)
	st.Description = reqData.Description
	st.EstimatedDuration = reqData.EstimatedDuration
	st.ReadingMaterial = reqData.ReadingMaterial
	if reqData.Attachments != nil {
		st.Attachments = reqData.Attachments
	}
	if reqData.ExternalLinks != nil {
		st.ExternalLinks = reqData.ExternalLinks
	}
	if reqData.OrderIndex != nil {
		st.OrderIndex = *reqData.OrderIndex
	}
}

// CreateSubTopic handles POST /api/sub-topics.
func CreateSubTopic(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSubTopic").(*courseValidator.SubTopicRequest)
	db := database.Database.Db

	levelID := reqData.LevelID
	if levelID == 0 {
		levelID, _ = validators.QueryID(c, "levelId")
	}
	if levelID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "levelId is required!", nil)
	}
	if err := db.Select("id").First(&models.Level{}, levelID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Level not found!"))
	}

	subTopic := models.SubTopic{
		LevelID:       levelID,
		IsActive:      boolOr(reqData.IsActive, true),
		Attachments:   []string{},
		ExternalLinks: []string{},
	}
	applySubTopic(&subTopic, reqData)
	if reqData.OrderIndex == nil {
		next, err := nextOrderIndex(db, &models.SubTopic{}, "level_id", levelID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		subTopic.OrderIndex = next
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subTopic).Error; err != nil {
			return err
		}
		if reqData.TopicID != nil {
			return linkTopic(tx, levelID, *reqData.TopicID, subTopic.ID)
		}
		return nil
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Sub-topic created successfully!", subTopic)
}

// UpdateSubTopic handles PUT /api/sub-topics with the id in the body.
func UpdateSubTopic(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSubTopic").(*courseValidator.SubTopicRequest)
	if reqData.ID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "id is required!", nil)
	}
	db := database.Database.Db

	var subTopic models.SubTopic
	if err := db.First(&subTopic, reqData.ID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Sub-topic not found!"))
	}
	applySubTopic(&subTopic, reqData)
	subTopic.IsActive = boolOr(reqData.IsActive, subTopic.IsActive)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Contents").Save(&subTopic).Error; err != nil {
			return err
		}
		if reqData.TopicID != nil {
			return linkTopic(tx, subTopic.LevelID, *reqData.TopicID, subTopic.ID)
		}
		return nil
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sub-topic updated successfully!", subTopic)
}

func DeleteSubTopic(c *fiber.Ctx) error {
	subTopicID := c.Locals("id").(uint)
	db := database.Database.Db

	if err := db.Select("id").First(&models.SubTopic{}, subTopicID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Sub-topic not found!"))
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return deleteSubTopics(tx, []uint{subTopicID})
	}); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sub-topic deleted successfully!", nil)
}

// UploadAttachment handles POST /api/sub-topics/:id/attachments (multipart
// field "file") and appends the stored file URL to the sub-topic.
func UploadAttachment(c *fiber.Ctx) error {
	subTopicID := c.Locals("id").(uint)
	db := database.Database.Db

	var subTopic models.SubTopic
	if err := db.First(&subTopic, subTopicID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Sub-topic not found!"))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "file is required!", nil)
	}
	name, err := utils.SaveUploadedFile(file, UploadDir)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	subTopic.Attachments = append(subTopic.Attachments, utils.GetFileURL(name))
	if err := db.Model(&subTopic).Update("attachments", subTopic.Attachments).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Attachment uploaded successfully!", subTopic)
}
