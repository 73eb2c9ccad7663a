package courseValidator

import (
	"academy/validators"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ModuleRequest struct {
	Title       string  `json:"title" validate:"notblank,min=3,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"gte=0"`
	IsActive    *bool   `json:"isActive"`
}

type LevelRequest struct {
	ModuleID           uint   `json:"moduleId"`
	Title              string `json:"title" validate:"notblank,min=2,max=200"`
	Description        string `json:"description"`
	OrderIndex         *int   `json:"orderIndex" validate:"omitempty,min=0"`
	IsActive           *bool  `json:"isActive"`
	EstimatedDuration  int    `json:"estimatedDuration" validate:"gte=0"`
	LearningObjectives string `json:"learningObjectives"`
}

type SubTopicRequest struct {
	ID                uint     `json:"id"`
	LevelID           uint     `json:"levelId"`
	TopicID           *uint    `json:"topicId"`
	Title             string   `json:"title" validate:"notblank,min=2,max=200"`
	Description       string   `json:"description"`
	OrderIndex        *int     `json:"orderIndex" validate:"omitempty,min=0"`
	IsActive          *bool    `json:"isActive"`
	EstimatedDuration int      `json:"estimatedDuration" validate:"gte=0"`
	ReadingMaterial   string   `json:"readingMaterial"`
	Attachments       []string `json:"attachments" validate:"omitempty,dive,notblank"`
	ExternalLinks     []string `json:"externalLinks" validate:"omitempty,dive,url"`
}

type ContentRequest struct {
	ID          uint   `json:"id"`
	SubTopicID  uint   `json:"subTopicId"`
	Title       string `json:"title" validate:"notblank,max=200"`
	ContentType string `json:"contentType" validate:"required,oneof=VIDEO DOCUMENT QUIZ ASSIGNMENT LIVE_SESSION NOTES STUDY_GUIDE TEXT"`
	ContentURL  string `json:"contentUrl" validate:"omitempty,url"`
	ContentText string `json:"contentText"`
	Duration    int    `json:"duration" validate:"gte=0"`
	IsRequired  *bool  `json:"isRequired"`
	IsPublished *bool  `json:"isPublished"`
	OrderIndex  *int   `json:"orderIndex" validate:"omitempty,min=0"`
}

func CreateModule() fiber.Handler {
	return validators.Body[ModuleRequest]("validatedModule")
}

func CreateLevel() fiber.Handler {
	return validators.Body[LevelRequest]("validatedLevel")
}

func SaveSubTopic() fiber.Handler {
	return validators.Body[SubTopicRequest]("validatedSubTopic")
}

func SaveContent() fiber.Handler {
	return validators.Body[ContentRequest]("validatedContent")
}

// ---- progress & enrollment ----

type CompleteSubTopicRequest struct {
	SubTopicID uint  `json:"subTopicId" validate:"required"`
	Completed  *bool `json:"completed" validate:"required"`
}

type ContentProgressRequest struct {
	ContentID uint  `json:"contentId" validate:"required"`
	Completed *bool `json:"completed" validate:"required"`
}

type EnrollmentRequest struct {
	ModuleID         uint    `json:"moduleId" validate:"required"`
	PaymentReference string  `json:"paymentReference" validate:"max=128"`
	Amount           float64 `json:"amount" validate:"gte=0"`
}

type EnrollmentPatchRequest struct {
	ExamDate           *time.Time `json:"examDate"`
	ProgressPercentage *int       `json:"progressPercentage" validate:"omitempty,min=0,max=100"`
	PaymentStatus      string     `json:"paymentStatus" validate:"omitempty,oneof=PENDING COMPLETED FAILED REFUNDED"`
	AmountPaid         *float64   `json:"amountPaid" validate:"omitempty,gte=0"`
}

func CompleteSubTopic() fiber.Handler {
	return validators.Body[CompleteSubTopicRequest]("validatedCompletion")
}

func ContentProgress() fiber.Handler {
	return validators.Body[ContentProgressRequest]("validatedProgress")
}

func CreateEnrollment() fiber.Handler {
	return validators.Body[EnrollmentRequest]("validatedEnrollment")
}

func PatchEnrollment() fiber.Handler {
	return validators.Body[EnrollmentPatchRequest]("validatedEnrollmentPatch")
}
