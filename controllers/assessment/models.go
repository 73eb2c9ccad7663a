package assessmentController

import (
	"academy/apperr"
	"academy/assessment"
	"academy/middleware"
	"academy/models"
	assessmentValidator "academy/validators/assessment"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// testModel is implemented by the four test tables through the embedded
// TestBody.
type testModel interface {
	Body() *models.TestBody
}

func newModel(kind assessment.Kind) testModel {
	switch kind {
	case assessment.KindSubTopic:
		return &models.SubTopicTest{}
	case assessment.KindLevel:
		return &models.LevelTest{}
	case assessment.KindModule:
		return &models.ModuleTest{}
	default:
		return &models.ExamConfiguration{}
	}
}

func modelID(m testModel) uint {
	switch t := m.(type) {
	case *models.SubTopicTest:
		return t.ID
	case *models.LevelTest:
		return t.ID
	case *models.ModuleTest:
		return t.ID
	case *models.ExamConfiguration:
		return t.ID
	}
	return 0
}

func loadModel(db *gorm.DB, ref assessment.Ref) (testModel, error) {
	m := newModel(ref.Kind)
	if err := db.First(m, ref.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Test not found!")
		}
		return nil, err
	}
	return m, nil
}

func parseRef(c *fiber.Ctx) (assessment.Ref, error) {
	ref, err := assessment.ParseModelRef(c.Params("id"))
	if err != nil {
		return ref, apperr.BadRequest("Invalid test model id, expected <kind>-<id>!")
	}
	return ref, nil
}

// canManage reports whether the session may see answers and inactive tests.
func canManage(c *fiber.Ctx) bool {
	return middleware.HasRole(c, models.RoleAdmin, models.RoleMasterPractitioner)
}

func snapshotOf(in assessmentValidator.QuestionInput) assessment.QuestionSnapshot {
	difficulty := strings.ToLower(strings.TrimSpace(in.Difficulty))
	if difficulty == "" {
		difficulty = "medium"
	}
	options := make([]string, len(in.Options))
	for i, o := range in.Options {
		options[i] = strings.TrimSpace(o)
	}
	return assessment.QuestionSnapshot{
		Question:      strings.TrimSpace(in.Question),
		Options:       options,
		CorrectAnswer: assessment.NormalizeLetter(in.CorrectAnswer),
		Category:      strings.TrimSpace(in.Category),
		Difficulty:    difficulty,
		SubjectModel:  strings.TrimSpace(in.SubjectModel),
	}
}

func questionFromSnapshot(s assessment.QuestionSnapshot, createdBy uint) models.Question {
	return models.Question{
		Question:      s.Question,
		Options:       s.Options,
		CorrectAnswer: s.CorrectAnswer,
		Category:      s.Category,
		Difficulty:    s.Difficulty,
		SubjectModel:  s.SubjectModel,
		IsActive:      true,
		CreatedBy:     createdBy,
	}
}

// composeFromBank snapshots active bank questions in the order of ids.
func composeFromBank(db *gorm.DB, ids []uint) ([]assessment.QuestionSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Question
	if err := db.Where("id IN ? AND is_active = ?", ids, true).Find(&rows).Error; err != nil {
		return nil, err
	}
	bank := make([]assessment.QuestionSnapshot, 0, len(rows))
	for _, q := range rows {
		bank = append(bank, q.Snapshot())
	}
	out, err := assessment.Compose(bank, ids)
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid question selection: %v", err))
	}
	return out, nil
}

// saveInline writes an inline question to the bank tagged with the test it
// was authored for and returns its snapshot.
func saveInline(tx *gorm.DB, in assessmentValidator.QuestionInput, ref assessment.Ref, createdBy uint) (assessment.QuestionSnapshot, error) {
	snap := snapshotOf(in)
	if err := assessment.ValidateQuestion(snap); err != nil {
		return snap, apperr.BadRequest(err.Error())
	}
	q := questionFromSnapshot(snap, createdBy)
	kind := string(ref.Kind)
	id := ref.ID
	q.ModelType = &kind
	q.ModelID = &id
	if err := tx.Create(&q).Error; err != nil {
		return snap, err
	}
	return q.Snapshot(), nil
}

// present hides answers from learners.
func present(c *fiber.Ctx, m testModel) testModel {
	if canManage(c) {
		return m
	}
	m.Body().Questions = assessment.Redact(m.Body().Questions)
	return m
}
