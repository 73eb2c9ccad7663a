package progressController

import (
	"academy/apperr"
	"academy/database"
	"academy/middleware"
	"academy/models"
	"academy/progress"
	"academy/validators"
	courseValidator "academy/validators/course"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CompleteSubTopic handles POST /api/sub-topics/complete.
func CompleteSubTopic(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedCompletion").(*courseValidator.CompleteSubTopicRequest)

	result, err := MarkSubTopic(database.Database.Db, userID, reqData.SubTopicID, *reqData.Completed)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	msg := "Sub-topic marked as complete!"
	if !result.Completed {
		msg = "Sub-topic marked as incomplete!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, msg, result)
}

// SaveUserProgress handles POST /api/user-progress.
func SaveUserProgress(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedProgress").(*courseValidator.ContentProgressRequest)

	result, err := MarkContent(database.Database.Db, userID, reqData.ContentID, *reqData.Completed, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved successfully!", result)
}

// GetUserProgress handles GET /api/user-progress?enrollmentId= (or ?moduleId=
// for the caller's own enrollment) and returns the flattened content entries.
func GetUserProgress(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	db := database.Database.Db

	var enrollment models.Enrollment
	if id, ok := validators.QueryID(c, "enrollmentId"); ok {
		err = db.First(&enrollment, id).Error
	} else if moduleID, ok := validators.QueryID(c, "moduleId"); ok {
		err = db.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&enrollment).Error
	} else {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "enrollmentId or moduleId is required!", nil)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if enrollment.UserID != userID {
		allowed, err := middleware.HasPermission(c, "enrollments.manage")
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if !allowed {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
		}
	}

	snap := Snapshot(enrollment)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollmentId":       enrollment.ID,
		"moduleId":           enrollment.ModuleID,
		"progressPercentage": enrollment.ProgressPercentage,
		"subTopics":          snap.SubTopics,
		"entries":            snap.Entries(),
	})
}

// GetLevelProgress handles GET /api/levels/:id/progress.
func GetLevelProgress(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	db := database.Database.Db
	levelID := c.Locals("id").(uint)

	tree, level, err := LoadLevelTree(db, levelID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	enrollment, err := RequirePaidEnrollment(db, userID, level.ModuleID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	view := progress.Evaluate(tree, Snapshot(enrollment))
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Level progress fetched successfully!", view)
}

// GetModuleProgress handles GET /api/modules/:id/progress.
func GetModuleProgress(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	db := database.Database.Db
	moduleID := c.Locals("id").(uint)

	if err := db.Select("id").First(&models.Module{}, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.ErrorResponse(c, apperr.NotFound("Module not found!"))
		}
		return middleware.ErrorResponse(c, err)
	}
	enrollment, err := RequirePaidEnrollment(db, userID, moduleID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	trees, err := LoadModuleTrees(db, moduleID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module progress fetched successfully!", BuildModuleView(enrollment, trees))
}
