package assessmentController

import (
	"academy/apperr"
	"academy/assessment"
	"academy/certificate"
	"academy/config"
	progressController "academy/controllers/progress"
	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/models"
	"academy/progress"
	assessmentValidator "academy/validators/assessment"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Grader scores every submitted attempt.
var Grader assessment.Grader = assessment.PercentGrader{}

var errTestLocked = apperr.Forbidden("This test is not unlocked yet!")

// checkUnlocked enforces that a learner may only sit a test once the content
// it covers is complete.
func checkUnlocked(db *gorm.DB, userID uint, m testModel) error {
	switch t := m.(type) {
	case *models.SubTopicTest:
		var st models.SubTopic
		if err := db.First(&st, t.SubTopicID).Error; err != nil {
			return err
		}
		tree, level, err := progressController.LoadLevelTree(db, st.LevelID)
		if err != nil {
			return err
		}
		enrollment, err := progressController.RequirePaidEnrollment(db, userID, level.ModuleID)
		if err != nil {
			return err
		}
		view := progress.Evaluate(tree, progressController.Snapshot(enrollment))
		for _, sv := range view.SubTopics {
			if sv.SubTopicID == st.ID && sv.TestUnlocked {
				return nil
			}
		}
		return errTestLocked

	case *models.LevelTest:
		tree, level, err := progressController.LoadLevelTree(db, t.LevelID)
		if err != nil {
			return err
		}
		enrollment, err := progressController.RequirePaidEnrollment(db, userID, level.ModuleID)
		if err != nil {
			return err
		}
		if !progress.Evaluate(tree, progressController.Snapshot(enrollment)).Completed {
			return errTestLocked
		}
		return nil

	case *models.ModuleTest:
		return moduleCompleted(db, userID, t.ModuleID)

	case *models.ExamConfiguration:
		if t.ModuleID != nil {
			return moduleCompleted(db, userID, *t.ModuleID)
		}
		var enrollments []models.Enrollment
		if err := db.Where("user_id = ? AND payment_status = ?", userID, models.PaymentCompleted).Find(&enrollments).Error; err != nil {
			return err
		}
		for _, e := range enrollments {
			trees, err := progressController.LoadModuleTrees(db, e.ModuleID)
			if err != nil {
				return err
			}
			if progressController.BuildModuleView(e, trees).Completed {
				return nil
			}
		}
		return apperr.Forbidden("Complete a module before taking the exam!")
	}
	return errTestLocked
}

func moduleCompleted(db *gorm.DB, userID, moduleID uint) error {
	enrollment, err := progressController.RequirePaidEnrollment(db, userID, moduleID)
	if err != nil {
		return err
	}
	trees, err := progressController.LoadModuleTrees(db, moduleID)
	if err != nil {
		return err
	}
	if !progressController.BuildModuleView(enrollment, trees).Completed {
		return errTestLocked
	}
	return nil
}

// stampExamResult records the exam outcome on the profile. The first pass
// fixes the pass time, the certificate number and the availability time;
// later attempts never move them.
func stampExamResult(tx *gorm.DB, userID uint, result assessment.Result, now time.Time) (*models.Profile, error) {
	var profile models.Profile
	if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Profile not found!")
		}
		return nil, err
	}
	if profile.TestCompleted {
		return &profile, nil
	}

	score := result.Score
	updates := map[string]interface{}{"test_score": score}
	if result.Passed {
		delay, prefix := certificate.DefaultDelay, certificate.DefaultPrefix
		if config.AppConfig != nil {
			delay, prefix = config.AppConfig.CertificateDelay, config.AppConfig.CertificatePrefix
		}
		availableAt := certificate.AvailableAt(now, delay)
		updates["test_completed"] = true
		updates["test_passed_at"] = now
		updates["certificate_available_at"] = availableAt
		updates["certificate_number"] = certificate.NewNumber(prefix)
		updates["certificate_notified"] = false
	}
	if err := tx.Model(&profile).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := tx.First(&profile, profile.ID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SubmitAttempt handles POST /api/test-models/:id/attempts.
func SubmitAttempt(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	ref, err := parseRef(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedAttempt").(*assessmentValidator.AttemptRequest)
	db := database.Database.Db

	m, err := loadModel(db, ref)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	body := m.Body()
	if !body.IsActive {
		return middleware.ErrorResponse(c, apperr.NotFound("Test not found!"))
	}
	if !canManage(c) {
		if err := checkUnlocked(db, userID, m); err != nil {
			return middleware.ErrorResponse(c, err)
		}
	}

	result, err := Grader.Grade(body.Questions, reqData.Answers, body.PassingScore)
	if errors.Is(err, assessment.ErrNoQuestions) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This test has no questions!", nil)
	}
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	now := time.Now()
	attempt := models.TestAttempt{
		UserID:       userID,
		ModelType:    string(ref.Kind),
		ModelID:      ref.ID,
		Score:        result.Score,
		CorrectCount: result.CorrectCount,
		Total:        result.Total,
		PassingScore: result.PassingScore,
		Passed:       result.Passed,
		Answers:      result.Answers,
	}

	var profile *models.Profile
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}
		if ref.Kind != assessment.KindExam {
			return nil
		}
		var err error
		profile, err = stampExamResult(tx, userID, result, now)
		return err
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	data := fiber.Map{
		"attemptId": attempt.ID,
		"modelId":   ref.String(),
		"result":    result,
	}
	if profile != nil {
		data["certificate"] = fiber.Map{
			"status":            certificate.Gate(profile.CertificateAvailableAt, now),
			"availableAt":       profile.CertificateAvailableAt,
			"certificateNumber": profile.CertificateNumber,
		}
		if result.Passed {
			logger.Log.Info("exam passed", "user_id", userID, "exam_id", ref.ID, "score", result.Score)
		}
	}

	msg := "Test submitted. You did not reach the passing score."
	if result.Passed {
		msg = "Test submitted. Congratulations, you passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, msg, data)
}

// GetAttempts lists the caller's attempts, optionally for one test model.
func GetAttempts(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	query := database.Database.Db.Where("user_id = ?", userID)
	if raw := c.Params("id"); raw != "" {
		ref, err := parseRef(c)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		query = query.Where("model_type = ? AND model_id = ?", string(ref.Kind), ref.ID)
	}

	var attempts []models.TestAttempt
	if err := query.Order("created_at DESC").Find(&attempts).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}
