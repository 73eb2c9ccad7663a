package superAdminController_test

import (
	superAdminController "academy/controllers/superAdmin"
	"academy/models"
	"academy/testutil"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func roleID(t *testing.T, srv *testutil.Server, name string) uint {
	t.Helper()
	var role models.Role
	require.NoError(t, srv.DB.Where("name = ?", name).First(&role).Error)
	return role.ID
}

func TestSystemRolesAreProtected(t *testing.T) {
	srv := testutil.NewServer(t)
	_, token := srv.CreateUser(t, "admin@example.com", models.RoleAdmin)
	practitioner := roleID(t, srv, models.RolePractitioner)

	code, env := srv.Do(t, http.MethodDelete, fmt.Sprintf("/api/admin/roles/%d", practitioner), token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "System roles cannot be deleted!", env.Message)

	code, _ = srv.Do(t, http.MethodPut, fmt.Sprintf("/api/admin/roles/%d", practitioner), token, map[string]interface{}{
		"name": "learner",
	})
	assert.Equal(t, http.StatusForbidden, code)

	// the description of a system role may still change
	code, env = srv.Do(t, http.MethodPut, fmt.Sprintf("/api/admin/roles/%d", practitioner), token, map[string]interface{}{
		"name":        models.RolePractitioner,
		"description": "Enrolled learner",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated models.Role
	env.Decode(t, &updated)
	assert.Equal(t, "Enrolled learner", updated.Description)
}

func TestCustomRoleLifecycle(t *testing.T) {
	srv := testutil.NewServer(t)
	_, token := srv.CreateUser(t, "admin@example.com", models.RoleAdmin)

	code, env := srv.Do(t, http.MethodPost, "/api/admin/roles", token, map[string]interface{}{"name": "reviewer"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var role models.Role
	env.Decode(t, &role)
	assert.False(t, role.IsSystem)

	code, _ = srv.Do(t, http.MethodPost, "/api/admin/roles", token, map[string]interface{}{"name": "Reviewer"})
	assert.Equal(t, http.StatusConflict, code)

	var perm models.Permission
	require.NoError(t, srv.DB.Where("name = ?", "contact.manage").First(&perm).Error)
	path := fmt.Sprintf("/api/admin/roles/%d/permissions", role.ID)

	code, env = srv.Do(t, http.MethodPost, path, token, map[string]interface{}{"permissionIds": []uint{perm.ID, perm.ID}})
	require.Equal(t, http.StatusOK, code, env.Message)
	var granted []models.Permission
	env.Decode(t, &granted)
	require.Len(t, granted, 1)
	assert.Equal(t, "contact.manage", granted[0].Name)

	code, env = srv.Do(t, http.MethodPost, path, token, map[string]interface{}{"permissionIds": []uint{99999}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Unknown permission in selection!", env.Message)

	// a user holding the role gains exactly the granted permission
	member, memberToken := srv.CreateUser(t, "reviewer@example.com", models.RolePractitioner)
	code, env = srv.Do(t, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d", member.ID), token, map[string]interface{}{
		"roleId": role.ID,
	})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = srv.Do(t, http.MethodGet, "/api/admin/contact-messages", memberToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = srv.Do(t, http.MethodGet, "/api/admin/users", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = srv.Do(t, http.MethodDelete, fmt.Sprintf("/api/admin/roles/%d", role.ID), token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Role is assigned to users!", env.Message)
}

func TestAdminCannotRemoveSelf(t *testing.T) {
	srv := testutil.NewServer(t)
	admin, token := srv.CreateUser(t, "admin@example.com", models.RoleAdmin)
	path := fmt.Sprintf("/api/admin/users/%d", admin.ID)

	code, _ := srv.Do(t, http.MethodPatch, path, token, map[string]interface{}{"isActive": false})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = srv.Do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	other, _ := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	code, env := srv.Do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", other.ID), token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	var profiles int64
	require.NoError(t, srv.DB.Model(&models.Profile{}).Where("user_id = ?", other.ID).Count(&profiles).Error)
	assert.Zero(t, profiles)
}

func TestCollectStats(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	learner, _ := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	other, _ := srv.CreateUser(t, "other@example.com", models.RolePractitioner)

	paid := srv.Enroll(t, learner.ID, course.Module.ID)
	require.NoError(t, srv.DB.Model(&paid).Update("amount_paid", 250).Error)
	require.NoError(t, srv.DB.Create(&models.Enrollment{
		UserID: other.ID, ModuleID: course.Module.ID, PaymentStatus: models.PaymentPending,
	}).Error)
	require.NoError(t, srv.DB.Create(&models.ContactMessage{Name: "A", Email: "a@example.com", Message: "hi"}).Error)

	at := time.Now()
	past := at.Add(-time.Hour)
	future := at.Add(time.Hour)
	require.NoError(t, srv.DB.Model(&models.Profile{}).Where("user_id = ?", learner.ID).
		Updates(map[string]interface{}{"test_completed": true, "certificate_available_at": past}).Error)
	require.NoError(t, srv.DB.Model(&models.Profile{}).Where("user_id = ?", other.ID).
		Updates(map[string]interface{}{"test_completed": true, "certificate_available_at": future}).Error)

	stats, err := superAdminController.CollectStats(srv.DB, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveModules)
	assert.Equal(t, int64(2), stats.TotalEnrollments)
	assert.Equal(t, int64(1), stats.PaidEnrollments)
	assert.InDelta(t, 250.0, stats.Revenue, 0.001)
	assert.Equal(t, int64(1), stats.CertifiedUsers)
	assert.Equal(t, int64(1), stats.PendingCertificates)
	assert.Equal(t, int64(1), stats.UnreadMessages)
}

func TestExportEnrollments(t *testing.T) {
	srv := testutil.NewServer(t)
	course := srv.SeedCourse(t)
	learner, _ := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	_, adminToken := srv.CreateUser(t, "admin@example.com", models.RoleAdmin)
	_, learnerToken := srv.CreateUser(t, "other@example.com", models.RolePractitioner)
	srv.Enroll(t, learner.ID, course.Module.ID)

	f, err := superAdminController.BuildEnrollmentWorkbook(srv.DB, course.Module.ID)
	require.NoError(t, err)
	rows, err := f.GetRows("Enrollments")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Len(t, rows, 2)
	assert.Equal(t, "Email", rows[0][2])
	assert.Equal(t, "learner@example.com", rows[1][2])
	assert.Equal(t, "Foundations", rows[1][3])

	resp := srv.Raw(t, http.MethodGet, fmt.Sprintf("/api/admin/enrollments/export?moduleId=%d", course.Module.ID), adminToken)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "enrollments-module-")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer book.Close()
	exported, err := book.GetRows("Enrollments")
	require.NoError(t, err)
	assert.Len(t, exported, 2)

	code, _ := srv.Do(t, http.MethodGet, "/api/admin/enrollments/export", learnerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
}
