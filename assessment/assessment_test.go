package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func sampleQuestion(text, correct string) QuestionSnapshot {
	return QuestionSnapshot{
		Question:      text,
		Options:       []string{"one", "two", "three", "four"},
		CorrectAnswer: correct,
		Difficulty:    "easy",
	}
}

func TestParseModelRef(t *testing.T) {
	cases := map[string]Ref{
		"level-12":            {Kind: KindLevel, ID: 12},
		"subtopic-3":          {Kind: KindSubTopic, ID: 3},
		"sub-topic-3":         {Kind: KindSubTopic, ID: 3},
		"levelTest-5":         {Kind: KindLevel, ID: 5},
		"exam-1":              {Kind: KindExam, ID: 1},
		"examConfiguration-2": {Kind: KindExam, ID: 2},
		"module-8":            {Kind: KindModule, ID: 8},
	}
	for in, want := range cases {
		got, err := ParseModelRef(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "level", "level-", "-4", "level-0", "course-3", "level-x"} {
		_, err := ParseModelRef(bad)
		assert.ErrorIs(t, err, ErrInvalidRef, bad)
	}
	assert.Equal(t, "level-12", Ref{Kind: KindLevel, ID: 12}.String())
}

func TestValidateQuestion(t *testing.T) {
	assert.NoError(t, ValidateQuestion(sampleQuestion("q", "b")))

	missing := sampleQuestion("q", "A")
	missing.Options = missing.Options[:3]
	assert.Error(t, ValidateQuestion(missing))

	blank := sampleQuestion("q", "A")
	blank.Options[2] = " "
	assert.Error(t, ValidateQuestion(blank))

	assert.Error(t, ValidateQuestion(sampleQuestion("q", "E")))
	assert.Error(t, ValidateQuestion(sampleQuestion("", "A")))

	hard := sampleQuestion("q", "A")
	hard.Difficulty = "brutal"
	assert.Error(t, ValidateQuestion(hard))
}

func TestComposeKeepsSelectionOrder(t *testing.T) {
	bank := []QuestionSnapshot{}
	for i := uint(1); i <= 4; i++ {
		q := sampleQuestion("q", "A")
		q.QuestionID = uintPtr(i)
		bank = append(bank, q)
	}

	got, err := Compose(bank, []uint{3, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(3), *got[0].QuestionID)
	assert.Equal(t, uint(1), *got[1].QuestionID)

	_, err = Compose(bank, []uint{1, 1})
	assert.ErrorIs(t, err, ErrDuplicateQuestion)

	_, err = Compose(bank, []uint{9})
	assert.Error(t, err)
}

func TestAppendReplaceRemove(t *testing.T) {
	list := []QuestionSnapshot{sampleQuestion("a", "A"), sampleQuestion("b", "B")}

	appended := Append(list, sampleQuestion("c", "C"))
	require.Len(t, appended, 3)
	assert.Equal(t, "c", appended[2].Question)
	assert.Equal(t, []string{"a", "b"}, []string{appended[0].Question, appended[1].Question})
	assert.Len(t, list, 2)

	replaced, err := Replace(appended, 1, sampleQuestion("B2", "D"))
	require.NoError(t, err)
	assert.Equal(t, "B2", replaced[1].Question)
	assert.Equal(t, "b", appended[1].Question)

	removed, err := Remove(replaced, 0)
	require.NoError(t, err)
	assert.Equal(t, "B2", removed[0].Question)
	assert.Len(t, removed, 2)

	_, err = Remove(removed, 5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = Replace(removed, -1, sampleQuestion("x", "A"))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRedact(t *testing.T) {
	list := []QuestionSnapshot{sampleQuestion("a", "A")}
	red := Redact(list)
	assert.Empty(t, red[0].CorrectAnswer)
	assert.Equal(t, "A", list[0].CorrectAnswer)
}

func TestPercentGrader(t *testing.T) {
	questions := []QuestionSnapshot{
		sampleQuestion("1", "A"),
		sampleQuestion("2", "B"),
		sampleQuestion("3", "C"),
	}
	g := PercentGrader{}

	res, err := g.Grade(questions, []string{"a", "B"}, 60)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CorrectCount)
	assert.Equal(t, 67, res.Score)
	assert.True(t, res.Passed)
	assert.False(t, res.Answers[2].Correct)

	res, err = g.Grade(questions, []string{"D", "D", "D"}, 60)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.Passed)

	res, err = g.Grade(questions, []string{"A", "B", "C"}, 100)
	require.NoError(t, err)
	assert.True(t, res.Passed)

	_, err = g.Grade(nil, nil, 50)
	assert.ErrorIs(t, err, ErrNoQuestions)
}
