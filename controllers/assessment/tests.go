package assessmentController

import (
	"academy/apperr"
	"academy/assessment"
	"academy/database"
	"academy/middleware"
	"academy/models"
	"academy/validators"
	assessmentValidator "academy/validators/assessment"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// testKind describes how one test table is owned and listed.
type testKind struct {
	kind         assessment.Kind
	ownerParam   string
	ownerColumn  string
	ownerModel   interface{}
	ownerMissing string
	unique       bool
	duplicateMsg string
}

var (
	subTopicTests = testKind{
		kind:         assessment.KindSubTopic,
		ownerParam:   "subTopicId",
		ownerColumn:  "sub_topic_id",
		ownerModel:   &models.SubTopic{},
		ownerMissing: "Sub-topic not found!",
		unique:       true,
		duplicateMsg: "Test already exists for this sub-topic",
	}
	levelTests = testKind{
		kind:         assessment.KindLevel,
		ownerParam:   "levelId",
		ownerColumn:  "level_id",
		ownerModel:   &models.Level{},
		ownerMissing: "Level not found!",
		unique:       true,
		duplicateMsg: "Test already exists for this level",
	}
	moduleTests = testKind{
		kind:         assessment.KindModule,
		ownerParam:   "moduleId",
		ownerColumn:  "module_id",
		ownerModel:   &models.Module{},
		ownerMissing: "Module not found!",
	}
	examConfigurations = testKind{
		kind:         assessment.KindExam,
		ownerParam:   "moduleId",
		ownerColumn:  "module_id",
		ownerModel:   &models.Module{},
		ownerMissing: "Module not found!",
	}
)

func (k testKind) ownerID(reqData *assessmentValidator.TestRequest) uint {
	switch k.kind {
	case assessment.KindSubTopic:
		return reqData.SubTopicID
	case assessment.KindLevel:
		return reqData.LevelID
	}
	return reqData.ModuleID
}

func (k testKind) build(ownerID uint, reqData *assessmentValidator.TestRequest, createdBy uint) testModel {
	passing := 70
	if reqData.PassingScore != nil {
		passing = *reqData.PassingScore
	}
	body := models.TestBody{
		Title:            strings.TrimSpace(reqData.Title),
		Description:      reqData.Description,
		PassingScore:     passing,
		TimeLimitSeconds: reqData.TimeLimitSeconds,
		IsActive:         reqData.IsActive == nil || *reqData.IsActive,
		CreatedBy:        createdBy,
	}
	switch k.kind {
	case assessment.KindSubTopic:
		return &models.SubTopicTest{SubTopicID: ownerID, TestBody: body}
	case assessment.KindLevel:
		return &models.LevelTest{LevelID: ownerID, TestBody: body}
	case assessment.KindModule:
		return &models.ModuleTest{ModuleID: ownerID, TestBody: body}
	}
	exam := &models.ExamConfiguration{TestBody: body}
	if ownerID != 0 {
		exam.ModuleID = &ownerID
	}
	return exam
}

func (k testKind) exists(db *gorm.DB, ownerID uint) (bool, error) {
	var count int64
	err := db.Model(newModel(k.kind)).Where(k.ownerColumn+" = ?", ownerID).Count(&count).Error
	return count > 0, err
}

// list answers GET /api/<kind>-tests?<owner>=.
func (k testKind) list(c *fiber.Ctx) error {
	query := database.Database.Db.Model(newModel(k.kind))
	if ownerID, ok := validators.QueryID(c, k.ownerParam); ok {
		query = query.Where(k.ownerColumn+" = ?", ownerID)
	} else if k.kind != assessment.KindExam {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, k.ownerParam+" is required!", nil)
	}
	if !canManage(c) {
		query = query.Where("is_active = ?", true)
	}

	var out []testModel
	switch k.kind {
	case assessment.KindSubTopic:
		var rows []models.SubTopicTest
		if err := query.Order("id ASC").Find(&rows).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		for i := range rows {
			out = append(out, present(c, &rows[i]))
		}
	case assessment.KindLevel:
		var rows []models.LevelTest
		if err := query.Order("id ASC").Find(&rows).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		for i := range rows {
			out = append(out, present(c, &rows[i]))
		}
	case assessment.KindModule:
		var rows []models.ModuleTest
		if err := query.Order("id ASC").Find(&rows).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		for i := range rows {
			out = append(out, present(c, &rows[i]))
		}
	default:
		var rows []models.ExamConfiguration
		if err := query.Order("id ASC").Find(&rows).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		for i := range rows {
			out = append(out, present(c, &rows[i]))
		}
	}
	if out == nil {
		out = []testModel{}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tests fetched successfully!", out)
}

// create answers POST for every test kind. Bank selections come first, then
// inline questions, which are also written to the bank.
func (k testKind) create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedTest").(*assessmentValidator.TestRequest)
	db := database.Database.Db

	ownerID := k.ownerID(reqData)
	if ownerID == 0 {
		ownerID, _ = validators.QueryID(c, k.ownerParam)
	}
	if ownerID == 0 && k.kind != assessment.KindExam {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, k.ownerParam+" is required!", nil)
	}
	if ownerID != 0 {
		var owners int64
		if err := db.Model(k.ownerModel).Where("id = ?", ownerID).Count(&owners).Error; err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if owners == 0 {
			return middleware.ErrorResponse(c, apperr.NotFound(k.ownerMissing))
		}
	}

	if k.unique {
		exists, err := k.exists(db, ownerID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if exists {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, k.duplicateMsg, nil)
		}
	}

	questions, err := composeFromBank(db, reqData.QuestionIDs)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if len(questions) == 0 && len(reqData.Questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one question is required!", nil)
	}
	if questions == nil {
		questions = []assessment.QuestionSnapshot{}
	}

	m := k.build(ownerID, reqData, userID)
	err = db.Transaction(func(tx *gorm.DB) error {
		m.Body().Questions = questions
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if len(reqData.Questions) == 0 {
			return nil
		}
		ref := assessment.Ref{Kind: k.kind, ID: modelID(m)}
		for _, in := range reqData.Questions {
			snap, err := saveInline(tx, in, ref, userID)
			if err != nil {
				return err
			}
			questions = assessment.Append(questions, snap)
		}
		m.Body().Questions = questions
		return tx.Model(m).Update("questions", m.Body().Questions).Error
	})
	if err != nil {
		if k.unique {
			// lost a race with a concurrent create; the unique index rejected ours
			if exists, _ := k.exists(db, ownerID); exists {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, k.duplicateMsg, nil)
			}
		}
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Test created successfully!", m)
}

func GetSubTopicTests(c *fiber.Ctx) error { return subTopicTests.list(c) }

func CreateSubTopicTest(c *fiber.Ctx) error { return subTopicTests.create(c) }

func GetLevelTests(c *fiber.Ctx) error { return levelTests.list(c) }

func CreateLevelTest(c *fiber.Ctx) error { return levelTests.create(c) }

func GetModuleTests(c *fiber.Ctx) error { return moduleTests.list(c) }

func CreateModuleTest(c *fiber.Ctx) error { return moduleTests.create(c) }

func GetExamConfigurations(c *fiber.Ctx) error { return examConfigurations.list(c) }

func CreateExamConfiguration(c *fiber.Ctx) error { return examConfigurations.create(c) }
