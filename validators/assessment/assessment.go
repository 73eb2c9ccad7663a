package assessmentValidator

import (
	"academy/middleware"
	"academy/validators"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/xeipuuv/gojsonschema"
)

type QuestionInput struct {
	Question      string   `json:"question" validate:"notblank"`
	Options       []string `json:"options" validate:"required,len=4,dive,notblank"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required,oneof=A B C D a b c d"`
	Category      string   `json:"category" validate:"max=120"`
	Difficulty    string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	SubjectModel  string   `json:"subjectModel" validate:"max=120"`
}

// QuestionRequest is a bank create/update.
type QuestionRequest struct {
	QuestionInput
	ModelType *string `json:"modelType" validate:"omitempty,oneof=subtopic level module exam"`
	ModelID   *uint   `json:"modelId" validate:"required_with=ModelType"`
	IsActive  *bool   `json:"isActive"`
}

// TestRequest creates any of the four test models. Questions come from the
// bank by id, inline, or both (bank selections first).
type TestRequest struct {
	SubTopicID       uint            `json:"subTopicId"`
	LevelID          uint            `json:"levelId"`
	ModuleID         uint            `json:"moduleId"`
	Title            string          `json:"title" validate:"notblank,max=200"`
	Description      string          `json:"description"`
	QuestionIDs      []uint          `json:"questionIds" validate:"omitempty,dive,min=1"`
	Questions        []QuestionInput `json:"questions" validate:"omitempty,dive"`
	PassingScore     *int            `json:"passingScore" validate:"omitempty,min=0,max=100"`
	TimeLimitSeconds int             `json:"timeLimitSeconds" validate:"gte=0"`
	IsActive         *bool           `json:"isActive"`
}

// AddTestQuestionRequest appends either a bank question or an inline one.
type AddTestQuestionRequest struct {
	QuestionID *uint          `json:"questionId" validate:"required_without=Question"`
	Question   *QuestionInput `json:"question" validate:"required_without=QuestionID"`
}

type ReplaceTestQuestionRequest struct {
	Index    *int          `json:"index" validate:"required,min=0"`
	Question QuestionInput `json:"question"`
}

type AttemptRequest struct {
	Answers []string `json:"answers" validate:"required"`
}

func SaveQuestion() fiber.Handler {
	return validators.Body[QuestionRequest]("validatedQuestion")
}

func CreateTest() fiber.Handler {
	return validators.Body[TestRequest]("validatedTest")
}

func AddTestQuestion() fiber.Handler {
	return validators.Body[AddTestQuestionRequest]("validatedTestQuestion")
}

func ReplaceTestQuestion() fiber.Handler {
	return validators.Body[ReplaceTestQuestionRequest]("validatedTestQuestion")
}

func SubmitAttempt() fiber.Handler {
	return validators.Body[AttemptRequest]("validatedAttempt")
}

// importSchema describes the bulk question import document.
const importSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "maxItems": 500,
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "minItems": 4,
            "maxItems": 4,
            "items": {"type": "string", "minLength": 1}
          },
          "correctAnswer": {"type": "string", "enum": ["A", "B", "C", "D", "a", "b", "c", "d"]},
          "category": {"type": "string"},
          "difficulty": {"type": "string", "enum": ["easy", "medium", "hard", ""]},
          "subjectModel": {"type": "string"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledImportSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(importSchema))
	})
	return schema, schemaErr
}

type ImportRequest struct {
	Questions []QuestionInput `json:"questions"`
}

// ValidateImport checks a raw import document against the schema and then
// the per-question rules.
func ValidateImport(body []byte) (*ImportRequest, map[string]string, error) {
	s, err := compiledImportSchema()
	if err != nil {
		return nil, nil, err
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, map[string]string{"body": "Invalid JSON document!"}, nil
	}
	if !result.Valid() {
		errs := make(map[string]string, len(result.Errors()))
		for _, re := range result.Errors() {
			errs[re.Field()] = re.Description()
		}
		return nil, errs, nil
	}

	reqData := new(ImportRequest)
	if err := json.Unmarshal(body, reqData); err != nil {
		return nil, nil, fmt.Errorf("decode import: %w", err)
	}
	if errs := validators.Struct(reqData); errs != nil {
		return nil, errs, nil
	}
	return reqData, nil, nil
}

// ImportQuestions validator middleware
func ImportQuestions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, errs, err := ValidateImport(c.Body())
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals("validatedImport", reqData)
		return c.Next()
	}
}
