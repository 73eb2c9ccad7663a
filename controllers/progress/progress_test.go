package progressController_test

import (
	"academy/controllers/progress"
	"academy/models"
	"academy/progress"
	"academy/testutil"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressRequiresPaidEnrollment(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	user, token := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)

	code, env := srv.Do(t, http.MethodPost, "/api/user-progress", token, map[string]interface{}{
		"contentId": course.Contents[0].ID,
		"completed": true,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You are not enrolled in this module!", env.Message)

	code, _ = srv.Do(t, http.MethodGet, fmt.Sprintf("/api/levels/%d/progress", course.Level.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// a pending payment is not enough
	require.NoError(t, srv.DB.Create(&models.Enrollment{
		UserID: user.ID, ModuleID: course.Module.ID, PaymentStatus: models.PaymentPending,
	}).Error)
	code, env = srv.Do(t, http.MethodGet, fmt.Sprintf("/api/modules/%d/progress", course.Module.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Payment for this module is not completed!", env.Message)
}

func TestCompletionUnlocksNextSubTopic(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	user, token := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	enrollment := srv.Enroll(t, user.ID, course.Module.ID)

	first, second := course.SubTopics[0], course.SubTopics[1]

	// second sub-topic is locked until the first is complete
	code, env := srv.Do(t, http.MethodPost, "/api/user-progress", token, map[string]interface{}{
		"contentId": course.Contents[1].ID,
		"completed": true,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Complete the previous sub-topic first!", env.Message)

	// acknowledging before the content is done is refused
	code, _ = srv.Do(t, http.MethodPost, "/api/sub-topics/complete", token, map[string]interface{}{
		"subTopicId": first.ID,
		"completed":  true,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = srv.Do(t, http.MethodPost, "/api/user-progress", token, map[string]interface{}{
		"contentId": course.Contents[0].ID,
		"completed": true,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var marked progressController.ContentResult
	env.Decode(t, &marked)
	assert.Equal(t, progress.Completed, marked.SubTopicState)
	assert.Equal(t, 50, marked.ProgressPercentage)
	assert.True(t, marked.Entry.Completed)

	code, env = srv.Do(t, http.MethodPost, "/api/sub-topics/complete", token, map[string]interface{}{
		"subTopicId": first.ID,
		"completed":  true,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var ack progressController.SubTopicResult
	env.Decode(t, &ack)
	assert.True(t, ack.Success)
	assert.True(t, ack.Completed)

	code, env = srv.Do(t, http.MethodGet, fmt.Sprintf("/api/levels/%d/progress", course.Level.ID), token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var view progress.LevelView
	env.Decode(t, &view)
	require.Len(t, view.SubTopics, 2)
	assert.Equal(t, progress.Completed, view.SubTopics[0].State)
	assert.Equal(t, second.ID, view.SubTopics[1].SubTopicID)
	assert.Equal(t, progress.Unlocked, view.SubTopics[1].State)
	assert.Equal(t, 50, view.Progress)

	var stored models.Enrollment
	require.NoError(t, srv.DB.First(&stored, enrollment.ID).Error)
	assert.Equal(t, 50, stored.ProgressPercentage)
	assert.Greater(t, stored.Version, enrollment.Version)

	// clearing the content withdraws the acknowledgement
	code, _ = srv.Do(t, http.MethodPost, "/api/user-progress", token, map[string]interface{}{
		"contentId": course.Contents[0].ID,
		"completed": false,
	})
	require.Equal(t, http.StatusOK, code)

	code, env = srv.Do(t, http.MethodGet, fmt.Sprintf("/api/user-progress?moduleId=%d", course.Module.ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	var snapshot struct {
		ProgressPercentage int      `json:"progressPercentage"`
		SubTopics          []string `json:"subTopics"`
	}
	env.Decode(t, &snapshot)
	assert.Empty(t, snapshot.SubTopics)
	assert.Equal(t, 0, snapshot.ProgressPercentage)
}

func TestUserProgressIsPrivate(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	owner, _ := srv.CreateUser(t, "owner@example.com", models.RolePractitioner)
	_, otherToken := srv.CreateUser(t, "other@example.com", models.RolePractitioner)
	_, adminToken := srv.CreateUser(t, "admin@example.com", models.RoleAdmin)
	enrollment := srv.Enroll(t, owner.ID, course.Module.ID)

	path := fmt.Sprintf("/api/user-progress?enrollmentId=%d", enrollment.ID)
	code, _ := srv.Do(t, http.MethodGet, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = srv.Do(t, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCreateEnrollment(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	_, token := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)

	code, env := srv.Do(t, http.MethodPost, "/api/user-enrollments", token, map[string]interface{}{
		"moduleId":         course.Module.ID,
		"paymentReference": "declined-1",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var enrollment models.Enrollment
	env.Decode(t, &enrollment)
	assert.Equal(t, models.PaymentFailed, enrollment.PaymentStatus)

	// retrying with a captured payment upgrades the same row
	code, env = srv.Do(t, http.MethodPost, "/api/user-enrollments", token, map[string]interface{}{
		"moduleId":         course.Module.ID,
		"paymentReference": "paid-1",
		"amount":           100,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var paid models.Enrollment
	env.Decode(t, &paid)
	assert.Equal(t, enrollment.ID, paid.ID)
	assert.Equal(t, models.PaymentCompleted, paid.PaymentStatus)

	code, _ = srv.Do(t, http.MethodPost, "/api/user-enrollments", token, map[string]interface{}{
		"moduleId":         course.Module.ID,
		"paymentReference": "paid-2",
	})
	assert.Equal(t, http.StatusConflict, code)

	var count int64
	require.NoError(t, srv.DB.Model(&models.Enrollment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPendingPaymentAwaitsConfirmation(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	_, token := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	_, adminToken := srv.CreateUser(t, "admin@example.com", models.RoleAdmin)

	code, env := srv.Do(t, http.MethodPost, "/api/user-enrollments", token, map[string]interface{}{
		"moduleId":         course.Module.ID,
		"paymentReference": "pending-1",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var enrollment models.Enrollment
	env.Decode(t, &enrollment)
	assert.Equal(t, models.PaymentPending, enrollment.PaymentStatus)

	mark := map[string]interface{}{"contentId": course.Contents[0].ID, "completed": true}
	code, env = srv.Do(t, http.MethodPost, "/api/user-progress", token, mark)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Payment for this module is not completed!", env.Message)

	path := fmt.Sprintf("/api/user-enrollments/%d", enrollment.ID)
	code, _ = srv.Do(t, http.MethodPatch, path, token, map[string]interface{}{"paymentStatus": models.PaymentCompleted})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = srv.Do(t, http.MethodPatch, path, adminToken, map[string]interface{}{
		"paymentStatus": models.PaymentCompleted,
		"amountPaid":    100,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var settled models.Enrollment
	env.Decode(t, &settled)
	assert.Equal(t, models.PaymentCompleted, settled.PaymentStatus)
	assert.InDelta(t, 100.0, settled.AmountPaid, 0.001)

	code, env = srv.Do(t, http.MethodPost, "/api/user-progress", token, mark)
	assert.Equal(t, http.StatusOK, code, env.Message)
}

func TestEnrollmentManagerRoleSetsProgress(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	user, _ := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	enrollment := srv.Enroll(t, user.ID, course.Module.ID)

	role := models.Role{Name: "registrar"}
	require.NoError(t, srv.DB.Create(&role).Error)
	var perms []models.Permission
	require.NoError(t, srv.DB.Where("name IN ?", []string{"content.view", "progress.track", "enrollments.manage"}).Find(&perms).Error)
	require.Len(t, perms, 3)
	for _, p := range perms {
		require.NoError(t, srv.DB.Create(&models.RolePermission{RoleID: role.ID, PermissionID: p.ID}).Error)
	}
	_, registrarToken := srv.CreateUser(t, "registrar@example.com", "registrar")

	path := fmt.Sprintf("/api/user-enrollments/%d", enrollment.ID)
	code, env := srv.Do(t, http.MethodPatch, path, registrarToken, map[string]interface{}{"progressPercentage": 40})
	require.Equal(t, http.StatusOK, code, env.Message)

	var stored models.Enrollment
	require.NoError(t, srv.DB.First(&stored, enrollment.ID).Error)
	assert.Equal(t, 40, stored.ProgressPercentage)

	code, _ = srv.Do(t, http.MethodGet, fmt.Sprintf("/api/user-progress?enrollmentId=%d", enrollment.ID), registrarToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestOnlyAdminSetsProgress(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	user, token := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	_, adminToken := srv.CreateUser(t, "admin@example.com", models.RoleAdmin)
	enrollment := srv.Enroll(t, user.ID, course.Module.ID)

	path := fmt.Sprintf("/api/user-enrollments/%d", enrollment.ID)
	code, env := srv.Do(t, http.MethodPatch, path, token, map[string]interface{}{"progressPercentage": 100})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only administrators can set progress!", env.Message)

	code, _ = srv.Do(t, http.MethodPatch, path, adminToken, map[string]interface{}{"progressPercentage": 100})
	assert.Equal(t, http.StatusOK, code)

	var stored models.Enrollment
	require.NoError(t, srv.DB.First(&stored, enrollment.ID).Error)
	assert.Equal(t, 100, stored.ProgressPercentage)
}
