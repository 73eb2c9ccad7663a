package models

import (
	"academy/assessment"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is a bank entry. ModelType/ModelID are set when it was authored
// inline for one specific test.
type Question struct {
	Base
	Question      string                      `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `gorm:"size:1;not null" json:"correctAnswer"`
	Category      string                      `gorm:"index" json:"category"`
	Difficulty    string                      `gorm:"size:16;default:'medium'" json:"difficulty"`
	SubjectModel  string                      `gorm:"index" json:"subjectModel"`
	ModelType     *string                     `gorm:"size:32;index:idx_question_model" json:"modelType"`
	ModelID       *uint                       `gorm:"index:idx_question_model" json:"modelId"`
	IsActive      bool                        `gorm:"not null" json:"isActive"`
	CreatedBy     uint                        `json:"createdBy"`
}

func (q Question) Snapshot() assessment.QuestionSnapshot {
	id := q.ID
	return assessment.QuestionSnapshot{
		QuestionID:    &id,
		Question:      q.Question,
		Options:       append([]string(nil), q.Options...),
		CorrectAnswer: assessment.NormalizeLetter(q.CorrectAnswer),
		Category:      q.Category,
		Difficulty:    q.Difficulty,
		SubjectModel:  q.SubjectModel,
	}
}

// TestBody is shared by every test model. TotalQuestions is never stored; it
// is recomputed from Questions whenever a row is loaded or saved.
type TestBody struct {
	Title            string                                          `gorm:"not null" json:"title"`
	Description      string                                          `gorm:"type:text" json:"description"`
	Questions        datatypes.JSONSlice[assessment.QuestionSnapshot] `json:"questions"`
	TotalQuestions   int                                             `gorm:"-" json:"totalQuestions"`
	PassingScore     int                                             `gorm:"not null;default:70" json:"passingScore"`
	TimeLimitSeconds int                                             `gorm:"default:0" json:"timeLimitSeconds"`
	IsActive         bool                                            `gorm:"not null" json:"isActive"`
	CreatedBy        uint                                            `json:"createdBy"`
}

func (t *TestBody) syncTotal() {
	t.TotalQuestions = len(t.Questions)
}

func (t *TestBody) AfterFind(tx *gorm.DB) error {
	t.syncTotal()
	return nil
}

func (t *TestBody) AfterSave(tx *gorm.DB) error {
	t.syncTotal()
	return nil
}

func (t *TestBody) Body() *TestBody { return t }

type SubTopicTest struct {
	Base
	SubTopicID uint `gorm:"uniqueIndex;not null" json:"subTopicId"`
	TestBody
}

type LevelTest struct {
	Base
	LevelID uint `gorm:"uniqueIndex;not null" json:"levelId"`
	TestBody
}

type ModuleTest struct {
	Base
	ModuleID uint `gorm:"index;not null" json:"moduleId"`
	TestBody
}

// ExamConfiguration is the certifying exam. Passing it starts the certificate gate.
type ExamConfiguration struct {
	Base
	ModuleID *uint `gorm:"index" json:"moduleId"`
	TestBody
}

// TestAttempt records one graded submission against any test model.
type TestAttempt struct {
	Base
	UserID       uint                                         `gorm:"index;not null" json:"userId"`
	ModelType    string                                       `gorm:"size:32;index:idx_attempt_model;not null" json:"modelType"`
	ModelID      uint                                         `gorm:"index:idx_attempt_model;not null" json:"modelId"`
	Score        int                                          `json:"score"`
	CorrectCount int                                          `json:"correctCount"`
	Total        int                                          `json:"total"`
	PassingScore int                                          `json:"passingScore"`
	Passed       bool                                         `gorm:"not null" json:"passed"`
	Answers      datatypes.JSONSlice[assessment.AnswerResult] `json:"answers"`
}
