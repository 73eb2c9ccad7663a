package assessmentController_test

import (
	"academy/assessment"
	"academy/certificate"
	"academy/models"
	"academy/testutil"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inlineQuestion(text, answer string) map[string]interface{} {
	return map[string]interface{}{
		"question":      text,
		"options":       []string{"one", "two", "three", "four"},
		"correctAnswer": answer,
	}
}

type questionList struct {
	ModelID        string                        `json:"modelId"`
	TotalQuestions int                           `json:"totalQuestions"`
	Questions      []assessment.QuestionSnapshot `json:"questions"`
}

func TestDuplicateLevelTestRejected(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	_, token := srv.CreateUser(t, "master@example.com", models.RoleMasterPractitioner)

	body := map[string]interface{}{
		"levelId":   course.Level.ID,
		"title":     "Level 1 check",
		"questions": []interface{}{inlineQuestion("Q1", "A")},
	}
	code, env := srv.Do(t, http.MethodPost, "/api/level-tests", token, body)
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = srv.Do(t, http.MethodPost, "/api/level-tests", token, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Test already exists for this level", env.Message)

	var count int64
	require.NoError(t, srv.DB.Model(&models.LevelTest{}).Where("level_id = ?", course.Level.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// the inline question was stored in the bank and tagged with its test
	var bank []models.Question
	require.NoError(t, srv.DB.Find(&bank).Error)
	require.Len(t, bank, 1)
	require.NotNil(t, bank[0].ModelType)
	assert.Equal(t, string(assessment.KindLevel), *bank[0].ModelType)
}

func TestDuplicateSubTopicTestRejected(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	_, token := srv.CreateUser(t, "master@example.com", models.RoleMasterPractitioner)

	body := map[string]interface{}{
		"subTopicId": course.SubTopics[0].ID,
		"title":      "Quick check",
		"questions":  []interface{}{inlineQuestion("Q1", "B")},
	}
	code, _ := srv.Do(t, http.MethodPost, "/api/sub-topic-tests", token, body)
	require.Equal(t, http.StatusCreated, code)

	code, env := srv.Do(t, http.MethodPost, "/api/sub-topic-tests", token, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Test already exists for this sub-topic", env.Message)
}

func TestAddQuestionAppendsLast(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	_, token := srv.CreateUser(t, "master@example.com", models.RoleMasterPractitioner)

	code, env := srv.Do(t, http.MethodPost, "/api/questions", token, inlineQuestion("Bank question", "C"))
	require.Equal(t, http.StatusCreated, code, env.Message)
	var banked models.Question
	env.Decode(t, &banked)

	code, env = srv.Do(t, http.MethodPost, "/api/level-tests", token, map[string]interface{}{
		"levelId":   course.Level.ID,
		"title":     "Level 1 check",
		"questions": []interface{}{inlineQuestion("Q1", "A"), inlineQuestion("Q2", "B")},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created models.LevelTest
	env.Decode(t, &created)
	assert.Equal(t, 2, created.TotalQuestions)

	path := fmt.Sprintf("/api/test-models/level-%d/questions", created.ID)
	code, env = srv.Do(t, http.MethodPost, path, token, map[string]interface{}{"questionId": banked.ID})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var list questionList
	env.Decode(t, &list)
	assert.Equal(t, 3, list.TotalQuestions)
	require.Len(t, list.Questions, 3)
	require.NotNil(t, list.Questions[2].QuestionID)
	assert.Equal(t, banked.ID, *list.Questions[2].QuestionID)
	assert.Equal(t, "Q1", list.Questions[0].Question)

	// the same bank question cannot be added twice
	code, _ = srv.Do(t, http.MethodPost, path, token, map[string]interface{}{"questionId": banked.ID})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = srv.Do(t, http.MethodDelete, path+"?index=0", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	env.Decode(t, &list)
	assert.Equal(t, 2, list.TotalQuestions)
	assert.Equal(t, "Q2", list.Questions[0].Question)
}

func TestLearnerSeesNoAnswers(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	_, masterToken := srv.CreateUser(t, "master@example.com", models.RoleMasterPractitioner)
	_, learnerToken := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)

	code, env := srv.Do(t, http.MethodPost, "/api/level-tests", masterToken, map[string]interface{}{
		"levelId":   course.Level.ID,
		"title":     "Level 1 check",
		"questions": []interface{}{inlineQuestion("Q1", "A")},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created models.LevelTest
	env.Decode(t, &created)

	code, env = srv.Do(t, http.MethodGet, fmt.Sprintf("/api/test-models/level-%d/questions", created.ID), learnerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var list questionList
	env.Decode(t, &list)
	require.Len(t, list.Questions, 1)
	assert.Empty(t, list.Questions[0].CorrectAnswer)

	// learners cannot author tests
	code, _ = srv.Do(t, http.MethodPost, "/api/module-tests", learnerToken, map[string]interface{}{
		"moduleId":  course.Module.ID,
		"title":     "Final",
		"questions": []interface{}{inlineQuestion("Q1", "A")},
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestExamPassStartsCertificateGate(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	_, masterToken := srv.CreateUser(t, "master@example.com", models.RoleMasterPractitioner)
	learner, token := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	srv.Enroll(t, learner.ID, course.Module.ID)

	code, env := srv.Do(t, http.MethodPost, "/api/exam-configurations", masterToken, map[string]interface{}{
		"moduleId":     course.Module.ID,
		"title":        "Certification exam",
		"passingScore": 50,
		"questions":    []interface{}{inlineQuestion("Q1", "A"), inlineQuestion("Q2", "D")},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var exam models.ExamConfiguration
	env.Decode(t, &exam)
	attemptPath := fmt.Sprintf("/api/test-models/exam-%d/attempts", exam.ID)
	answers := map[string]interface{}{"answers": []string{"A", "B"}}

	// module not completed yet
	code, _ = srv.Do(t, http.MethodPost, attemptPath, token, answers)
	assert.Equal(t, http.StatusForbidden, code)

	for _, content := range course.Contents {
		code, env = srv.Do(t, http.MethodPost, "/api/user-progress", token, map[string]interface{}{
			"contentId": content.ID,
			"completed": true,
		})
		require.Equal(t, http.StatusOK, code, env.Message)
	}

	before := time.Now()
	code, env = srv.Do(t, http.MethodPost, attemptPath, token, answers)
	require.Equal(t, http.StatusOK, code, env.Message)
	var submitted struct {
		Result      assessment.Result `json:"result"`
		Certificate struct {
			Status            certificate.Status `json:"status"`
			AvailableAt       time.Time          `json:"availableAt"`
			CertificateNumber string             `json:"certificateNumber"`
		} `json:"certificate"`
	}
	env.Decode(t, &submitted)
	assert.True(t, submitted.Result.Passed)
	assert.Equal(t, 50, submitted.Result.Score)
	assert.Equal(t, certificate.Processing, submitted.Certificate.Status)
	assert.Regexp(t, `^CERT-[0-9A-F]{8}$`, submitted.Certificate.CertificateNumber)
	assert.WithinDuration(t, before.Add(48*time.Hour), submitted.Certificate.AvailableAt, time.Minute)

	var profile models.Profile
	require.NoError(t, srv.DB.Where("user_id = ?", learner.ID).First(&profile).Error)
	assert.True(t, profile.TestCompleted)
	require.NotNil(t, profile.TestScore)
	assert.Equal(t, 50, *profile.TestScore)

	// a later attempt does not move the gate
	code, _ = srv.Do(t, http.MethodPost, attemptPath, token, map[string]interface{}{"answers": []string{"A", "D"}})
	require.Equal(t, http.StatusOK, code)
	var again models.Profile
	require.NoError(t, srv.DB.First(&again, profile.ID).Error)
	assert.Equal(t, profile.CertificateNumber, again.CertificateNumber)
	assert.True(t, profile.CertificateAvailableAt.Equal(*again.CertificateAvailableAt))

	code, env = srv.Do(t, http.MethodGet, "/api/certificates/status", token, nil)
	require.Equal(t, http.StatusOK, code)
	var status struct {
		Status           certificate.Status `json:"status"`
		RemainingSeconds int64              `json:"remainingSeconds"`
	}
	env.Decode(t, &status)
	assert.Equal(t, certificate.Processing, status.Status)
	assert.Greater(t, status.RemainingSeconds, int64(47*3600))

	code, _ = srv.Do(t, http.MethodGet, "/api/certificates/me", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// once the delay has passed the certificate renders
	past := time.Now().Add(-time.Minute)
	require.NoError(t, srv.DB.Model(&models.Profile{}).Where("id = ?", profile.ID).Update("certificate_available_at", past).Error)
	resp := srv.Raw(t, http.MethodGet, "/api/certificates/me", token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
