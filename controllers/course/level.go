package courseController

import (
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

// syncTopics makes the level's topic placeholders match its learning
// objectives. Rows are matched to lines by title, so a matched row keeps its
// id and sub-topic link and only moves to its new position. Lines without a
// row get a new placeholder; rows whose title is gone are removed.
func syncTopics(tx *gorm.DB, levelID uint, objectives string) error {
	lines := utils.SplitLines(objectives)

	var topics []models.LevelTopic
	if err := ordered(tx.Where("level_id = ?", levelID)).Find(&topics).Error; err != nil {
		return err
	}

	// duplicate titles are consumed in their current order
	byTitle := make(map[string][]models.LevelTopic, len(topics))
	for _, t := range topics {
		byTitle[t.Title] = append(byTitle[t.Title], t)
	}

	for i, title := range lines {
		if queue := byTitle[title]; len(queue) > 0 {
			t := queue[0]
			byTitle[title] = queue[1:]
			if t.OrderIndex == i {
				continue
			}
			if err := tx.Model(&models.LevelTopic{}).Where("id = ?", t.ID).Update("order_index", i).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Create(&models.LevelTopic{LevelID: levelID, Title: title, OrderIndex: i}).Error; err != nil {
			return err
		}
	}

	var stale []uint
	for _, queue := range byTitle {
		for _, t := range queue {
			stale = append(stale, t.ID)
		}
	}
	if len(stale) > 0 {
		if err := tx.Where("id IN ?", stale).Delete(&models.LevelTopic{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetLevels handles GET /api/levels?moduleId=.
func GetLevels(c *fiber.Ctx) error {
	moduleID, ok := validators.QueryID(c, "moduleId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "moduleId is required!", nil)
	}

	query := database.Database.Db.Where("module_id = ?", moduleID).Preload("Topics", ordered)
	if !canManage(c) {
		query = query.Where("is_active = ?", true)
	}

	var levels []models.Level
	if err := ordered(query).Find(&levels).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Levels fetched successfully!", levels)
}

// CreateLevel creates the level and one topic placeholder per learning
// objective line in the same transaction.
func CreateLevel(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLevel").(*courseValidator.LevelRequest)
	db := database.Database.Db

	moduleID := reqData.ModuleID
	if moduleID == 0 {
		moduleID, _ = validators.QueryID(c, "moduleId")
	}
	if moduleID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "moduleId is required!", nil)
	}
	if err := db.Select("id").First(&models.Module{}, moduleID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Module not found!"))
	}

	level := models.Level{
		ModuleID:           moduleID,
		Title:              strings.TrimSpace(reqData.Title),
		Description:        reqData.Description,
		IsActive:           boolOr(reqData.IsActive, true),
		EstimatedDuration:  reqData.EstimatedDuration,
		LearningObjectives: reqData.LearningObjectives,
	}
	if reqData.OrderIndex != nil {
		level.OrderIndex = *reqData.OrderIndex
	} else {
		next, err := nextOrderIndex(db, &models.Level{}, "module_id", moduleID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		level.OrderIndex = next
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&level).Error; err != nil {
			return err
		}
		return syncTopics(tx, level.ID, level.LearningObjectives)
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := db.Preload("Topics", ordered).First(&level, level.ID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Level created successfully!", level)
}

func UpdateLevel(c *fiber.Ctx) error {
	levelID := c.Locals("id").(uint)
	reqData := c.Locals("validatedLevel").(*courseValidator.LevelRequest)
	db := database.Database.Db

	var level models.Level
	if err := db.First(&level, levelID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Level not found!"))
	}

	objectivesChanged := level.LearningObjectives != reqData.LearningObjectives
	level.Title = strings.TrimSpace(reqData.Title)
	level.Description = reqData.Description
	level.EstimatedDuration = reqData.EstimatedDuration
	level.LearningObjectives = reqData.LearningObjectives
	level.IsActive = boolOr(reqData.IsActive, level.IsActive)
	if reqData.OrderIndex != nil {
		level.OrderIndex = *reqData.OrderIndex
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Topics", "SubTopics").Save(&level).Error; err != nil {
			return err
		}
		if objectivesChanged {
			return syncTopics(tx, level.ID, level.LearningObjectives)
		}
		return nil
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := db.Preload("Topics", ordered).First(&level, level.ID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Level updated successfully!", level)
}

func DeleteLevel(c *fiber.Ctx) error {
	levelID := c.Locals("id").(uint)
	db := database.Database.Db

	if err := db.Select("id").First(&models.Level{}, levelID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Level not found!"))
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return deleteLevels(tx, []uint{levelID})
	}); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Level deleted successfully!", nil)
}

type topicView struct {
	models.LevelTopic
	SubTopicTitle string `json:"subTopicTitle,omitempty"`
}

// GetLevelTopics handles GET /api/levels/:id/topics.
func GetLevelTopics(c *fiber.Ctx) error {
	levelID := c.Locals("id").(uint)
	db := database.Database.Db

	if err := db.Select("id").First(&models.Level{}, levelID).Error; err != nil {
		return middleware.ErrorResponse(c, notFound(err, "Level not found!"))
	}

	var topics []models.LevelTopic
	if err := ordered(db.Where("level_id = ?", levelID)).Find(&topics).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var linked []uint
	for _, t := range topics {
		if t.SubTopicID != nil {
			linked = append(linked, *t.SubTopicID)
		}
	}
	titles := map[uint]string{}
	if len(linked) > 0 {
		var subTopics []models.SubTopic
		if err := db.Select("id", "title").Where("id IN ?", linked).Find(&subTopics).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		for _, st := range subTopics {
			titles[st.ID] = st.Title
		}
	}

	out := make([]topicView, 0, len(topics))
	for _, t := range topics {
		v := topicView{LevelTopic: t}
		if t.SubTopicID != nil {
			v.SubTopicTitle = titles[*t.SubTopicID]
		}
		out = append(out, v)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topics fetched successfully!", out)
}
