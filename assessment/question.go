package assessment

import (
	"errors"
	"fmt"
	"strings"
)

// OptionLetters are the only valid correct-answer values, one per option slot.
var OptionLetters = []string{"A", "B", "C", "D"}

var (
	ErrIndexOutOfRange   = errors.New("question index out of range")
	ErrDuplicateQuestion = errors.New("question selected more than once")
)

// QuestionSnapshot is a question copied by value into a test. QuestionID points
// back at the bank row it was taken from, when there is one.
type QuestionSnapshot struct {
	QuestionID    *uint    `json:"questionId,omitempty"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Category      string   `json:"category,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	SubjectModel  string   `json:"subjectModel,omitempty"`
}

func NormalizeLetter(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func validLetter(s string) bool {
	for _, l := range OptionLetters {
		if l == s {
			return true
		}
	}
	return false
}

func ValidDifficulty(d string) bool {
	switch d {
	case "easy", "medium", "hard":
		return true
	}
	return false
}

// ValidateQuestion enforces four non-empty options and exactly one correct
// letter among A-D.
func ValidateQuestion(q QuestionSnapshot) error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question text is required")
	}
	if len(q.Options) != len(OptionLetters) {
		return fmt.Errorf("exactly %d options are required", len(OptionLetters))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("option %s is empty", OptionLetters[i])
		}
	}
	if !validLetter(NormalizeLetter(q.CorrectAnswer)) {
		return errors.New("correct answer must be one of A, B, C, D")
	}
	if q.Difficulty != "" && !ValidDifficulty(q.Difficulty) {
		return errors.New("difficulty must be easy, medium or hard")
	}
	return nil
}

// Compose selects bank questions by id, preserving the order of ids.
func Compose(bank []QuestionSnapshot, ids []uint) ([]QuestionSnapshot, error) {
	byID := make(map[uint]QuestionSnapshot, len(bank))
	for _, q := range bank {
		if q.QuestionID != nil {
			byID[*q.QuestionID] = q
		}
	}
	out := make([]QuestionSnapshot, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateQuestion, id)
		}
		seen[id] = struct{}{}
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("question %d not found in bank", id)
		}
		out = append(out, q)
	}
	return out, nil
}

// Append returns a new list with q added last.
func Append(list []QuestionSnapshot, q QuestionSnapshot) []QuestionSnapshot {
	out := make([]QuestionSnapshot, 0, len(list)+1)
	out = append(out, list...)
	return append(out, q)
}

func Replace(list []QuestionSnapshot, index int, q QuestionSnapshot) ([]QuestionSnapshot, error) {
	if index < 0 || index >= len(list) {
		return nil, ErrIndexOutOfRange
	}
	out := append([]QuestionSnapshot(nil), list...)
	out[index] = q
	return out, nil
}

func Remove(list []QuestionSnapshot, index int) ([]QuestionSnapshot, error) {
	if index < 0 || index >= len(list) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]QuestionSnapshot, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

// Redact strips correct answers for learner-facing payloads.
func Redact(list []QuestionSnapshot) []QuestionSnapshot {
	out := make([]QuestionSnapshot, len(list))
	for i, q := range list {
		q.CorrectAnswer = ""
		out[i] = q
	}
	return out
}
