package assessmentValidator

import (
	"testing"

	"academy/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImport(t *testing.T) {
	good := []byte(`{"questions":[{"question":"2+2?","options":["1","2","3","4"],"correctAnswer":"d","difficulty":"easy"}]}`)
	req, errs, err := ValidateImport(good)
	require.NoError(t, err)
	assert.Nil(t, errs)
	require.Len(t, req.Questions, 1)
	assert.Equal(t, "d", req.Questions[0].CorrectAnswer)

	_, errs, err = ValidateImport([]byte(`{"questions":[{"question":"x","options":["1","2","3"],"correctAnswer":"A"}]}`))
	require.NoError(t, err)
	assert.NotEmpty(t, errs)

	_, errs, err = ValidateImport([]byte(`{"questions":[]}`))
	require.NoError(t, err)
	assert.NotEmpty(t, errs)

	_, errs, err = ValidateImport([]byte(`not json`))
	require.NoError(t, err)
	assert.Contains(t, errs, "body")
}

func TestAddTestQuestionRequiresOneSource(t *testing.T) {
	assert.NotNil(t, validators.Struct(&AddTestQuestionRequest{}))

	id := uint(4)
	assert.Nil(t, validators.Struct(&AddTestQuestionRequest{QuestionID: &id}))

	inline := &QuestionInput{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "B"}
	assert.Nil(t, validators.Struct(&AddTestQuestionRequest{Question: inline}))

	inline.Options = []string{"a", "b"}
	assert.NotNil(t, validators.Struct(&AddTestQuestionRequest{Question: inline}))
}
