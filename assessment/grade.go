package assessment

import (
	"errors"
	"math"
)

var ErrNoQuestions = errors.New("test has no questions")

type AnswerResult struct {
	Index    int    `json:"index"`
	Selected string `json:"selected"`
	Correct  bool   `json:"correct"`
}

type Result struct {
	Score        int            `json:"score"`
	CorrectCount int            `json:"correctCount"`
	Total        int            `json:"total"`
	PassingScore int            `json:"passingScore"`
	Passed       bool           `json:"passed"`
	Answers      []AnswerResult `json:"answers"`
}

// Grader turns a submitted answer sheet into a score.
type Grader interface {
	Grade(questions []QuestionSnapshot, answers []string, passingScore int) (Result, error)
}

// PercentGrader scores round(100*correct/total). Unanswered questions count as
// wrong and there is no partial credit.
type PercentGrader struct{}

func (PercentGrader) Grade(questions []QuestionSnapshot, answers []string, passingScore int) (Result, error) {
	total := len(questions)
	if total == 0 {
		return Result{}, ErrNoQuestions
	}
	res := Result{Total: total, PassingScore: passingScore, Answers: make([]AnswerResult, total)}
	for i, q := range questions {
		selected := ""
		if i < len(answers) {
			selected = NormalizeLetter(answers[i])
		}
		ok := selected != "" && selected == NormalizeLetter(q.CorrectAnswer)
		if ok {
			res.CorrectCount++
		}
		res.Answers[i] = AnswerResult{Index: i, Selected: selected, Correct: ok}
	}
	res.Score = int(math.Round(100 * float64(res.CorrectCount) / float64(total)))
	res.Passed = res.Score >= passingScore
	return res, nil
}
