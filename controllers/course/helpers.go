package courseController

import (
	"academy/apperr"
	"academy/middleware"
	"academy/models"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// canManage reports whether the session may see inactive and unpublished items.
func canManage(c *fiber.Ctx) bool {
	return middleware.HasRole(c, models.RoleAdmin, models.RoleMasterPractitioner)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(message)
	}
	return err
}

// nextOrderIndex returns one past the highest order_index under the parent.
func nextOrderIndex(db *gorm.DB, model interface{}, parentColumn string, parentID uint) (int, error) {
	var maxOrder int
	err := db.Model(model).Where(parentColumn+" = ?", parentID).Select("COALESCE(MAX(order_index), -1)").Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

func ordered(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC, id ASC")
}

// deleteSubTopics removes sub-topics together with their content and tests and
// releases any topic placeholder linked to them.
func deleteSubTopics(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("sub_topic_id IN ?", ids).Delete(&models.Content{}).Error; err != nil {
		return err
	}
	if err := tx.Where("sub_topic_id IN ?", ids).Delete(&models.SubTopicTest{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.LevelTopic{}).Where("sub_topic_id IN ?", ids).Update("sub_topic_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.SubTopic{}).Error
}

func deleteLevels(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var subTopicIDs []uint
	if err := tx.Model(&models.SubTopic{}).Where("level_id IN ?", ids).Pluck("id", &subTopicIDs).Error; err != nil {
		return err
	}
	if err := deleteSubTopics(tx, subTopicIDs); err != nil {
		return err
	}
	if err := tx.Where("level_id IN ?", ids).Delete(&models.LevelTopic{}).Error; err != nil {
		return err
	}
	if err := tx.Where("level_id IN ?", ids).Delete(&models.LevelTest{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Level{}).Error
}
