package assessmentController

import (
	"academy/apperr"
	"academy/assessment"
	"academy/database"
	"academy/middleware"
	"academy/models"
	"academy/utils"
	"academy/validators"
	assessmentValidator "academy/validators/assessment"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func questionsPayload(ref assessment.Ref, m testModel) fiber.Map {
	return fiber.Map{
		"modelId":        ref.String(),
		"totalQuestions": m.Body().TotalQuestions,
		"questions":      m.Body().Questions,
	}
}

// writeQuestions stores a new question list on the test; TotalQuestions
// follows through the save hook.
func writeQuestions(tx *gorm.DB, m testModel, list []assessment.QuestionSnapshot) error {
	m.Body().Questions = list
	return tx.Model(m).Update("questions", m.Body().Questions).Error
}

// GetTestQuestions handles GET /api/test-models/:id/questions.
func GetTestQuestions(c *fiber.Ctx) error {
	ref, err := parseRef(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	m, err := loadModel(database.Database.Db, ref)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !canManage(c) && !m.Body().IsActive {
		return middleware.ErrorResponse(c, apperr.NotFound("Test not found!"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", questionsPayload(ref, present(c, m)))
}

// AddTestQuestion handles POST /api/test-models/:id/questions. The question is
// always placed last.
func AddTestQuestion(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	ref, err := parseRef(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedTestQuestion").(*assessmentValidator.AddTestQuestionRequest)

	var m testModel
	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadModel(tx, ref); err != nil {
			return err
		}

		var snap assessment.QuestionSnapshot
		if reqData.QuestionID != nil {
			for _, q := range m.Body().Questions {
				if q.QuestionID != nil && *q.QuestionID == *reqData.QuestionID {
					return apperr.BadRequest("Question is already part of this test!")
				}
			}
			picked, err := composeFromBank(tx, []uint{*reqData.QuestionID})
			if err != nil {
				return err
			}
			snap = picked[0]
		} else {
			if snap, err = saveInline(tx, *reqData.Question, ref, userID); err != nil {
				return err
			}
		}
		return writeQuestions(tx, m, assessment.Append(m.Body().Questions, snap))
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", questionsPayload(ref, m))
}

// ReplaceTestQuestion handles PUT /api/test-models/:id/questions.
func ReplaceTestQuestion(c *fiber.Ctx) error {
	ref, err := parseRef(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedTestQuestion").(*assessmentValidator.ReplaceTestQuestionRequest)

	snap := snapshotOf(reqData.Question)
	if err := assessment.ValidateQuestion(snap); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	var m testModel
	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadModel(tx, ref); err != nil {
			return err
		}
		list, err := assessment.Replace(m.Body().Questions, *reqData.Index, snap)
		if errors.Is(err, assessment.ErrIndexOutOfRange) {
			return apperr.BadRequest("Question index out of range!")
		}
		if err != nil {
			return err
		}
		return writeQuestions(tx, m, list)
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", questionsPayload(ref, m))
}

// RemoveTestQuestion handles DELETE /api/test-models/:id/questions?index=.
func RemoveTestQuestion(c *fiber.Ctx) error {
	ref, err := parseRef(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	index, err := strconv.Atoi(strings.TrimSpace(c.Query("index")))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "index is required!", nil)
	}

	var m testModel
	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var err error
		if m, err = loadModel(tx, ref); err != nil {
			return err
		}
		list, err := assessment.Remove(m.Body().Questions, index)
		if errors.Is(err, assessment.ErrIndexOutOfRange) {
			return apperr.BadRequest("Question index out of range!")
		}
		if err != nil {
			return err
		}
		return writeQuestions(tx, m, list)
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question removed successfully!", questionsPayload(ref, m))
}

// ---- question bank ----

// GetQuestions lists the bank with optional filters.
func GetQuestions(c *fiber.Ctx) error {
	var pg validators.Pagination
	if err := c.QueryParser(&pg); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}
	page, limit, offset := pg.Normalize()

	query := database.Database.Db.Model(&models.Question{})
	for param, column := range map[string]string{
		"category":     "category",
		"difficulty":   "difficulty",
		"subjectModel": "subject_model",
		"modelType":    "model_type",
	} {
		if v := strings.TrimSpace(c.Query(param)); v != "" {
			query = query.Where(column+" = ?", v)
		}
	}
	if id, ok := validators.QueryID(c, "modelId"); ok {
		query = query.Where("model_id = ?", id)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	var questions []models.Question
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&questions).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", fiber.Map{
		"questions":  questions,
		"pagination": utils.PageMeta(total, page, limit),
	})
}

func applyQuestion(q *models.Question, reqData *assessmentValidator.QuestionRequest) error {
	snap := snapshotOf(reqData.QuestionInput)
	if err := assessment.ValidateQuestion(snap); err != nil {
		return apperr.BadRequest(err.Error())
	}
	q.Question = snap.Question
	q.Options = snap.Options
	q.CorrectAnswer = snap.CorrectAnswer
	q.Category = snap.Category
	q.Difficulty = snap.Difficulty
	q.SubjectModel = snap.SubjectModel
	if reqData.ModelType != nil {
		q.ModelType = reqData.ModelType
		q.ModelID = reqData.ModelID
	}
	if reqData.IsActive != nil {
		q.IsActive = *reqData.IsActive
	}
	return nil
}

func CreateQuestion(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedQuestion").(*assessmentValidator.QuestionRequest)

	q := models.Question{IsActive: true, CreatedBy: userID}
	if err := applyQuestion(&q, reqData); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := database.Database.Db.Create(&q).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", q)
}

// UpdateQuestion edits a bank row. Tests keep the copy they were built with.
func UpdateQuestion(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	reqData := c.Locals("validatedQuestion").(*assessmentValidator.QuestionRequest)
	db := database.Database.Db

	var q models.Question
	if err := db.First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if err := applyQuestion(&q, reqData); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := db.Save(&q).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", q)
}

func DeleteQuestion(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	res := database.Database.Db.Delete(&models.Question{}, id)
	if res.Error != nil {
		return middleware.ErrorResponse(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

// ImportQuestions handles POST /api/questions/import. Either every question
// is stored or none is.
func ImportQuestions(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedImport").(*assessmentValidator.ImportRequest)

	rows := make([]models.Question, 0, len(reqData.Questions))
	for i, in := range reqData.Questions {
		snap := snapshotOf(in)
		if err := assessment.ValidateQuestion(snap); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Question "+strconv.Itoa(i+1)+": "+err.Error(), nil)
		}
		rows = append(rows, questionFromSnapshot(snap, userID))
	}

	if err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, 100).Error
	}); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Questions imported successfully!", fiber.Map{
		"imported": len(rows),
	})
}
