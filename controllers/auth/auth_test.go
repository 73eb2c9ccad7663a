package authController_test

import (
	"academy/models"
	"academy/testutil"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAssignsDefaultRole(t *testing.T) {
	srv := testutil.NewServer(t)

	body := map[string]interface{}{
		"name":     "Ada Practitioner",
		"email":    "Ada@Example.com",
		"password": "password123",
	}
	code, env := srv.Do(t, http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var session struct {
		User models.User `json:"user"`
		Role string      `json:"role"`
	}
	env.Decode(t, &session)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, models.RolePractitioner, session.Role)

	code, _ = srv.Do(t, http.MethodPost, "/api/auth/signup", "", body)
	assert.Equal(t, http.StatusConflict, code)

	code, env = srv.Do(t, http.MethodPost, "/api/auth/signup", "", map[string]interface{}{
		"name": "x", "email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	var fields map[string]string
	env.Decode(t, &fields)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestLoginLockout(t *testing.T) {
	srv := testutil.NewServer(t)
	user, _ := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)

	wrong := map[string]interface{}{"email": user.Email, "password": "not-the-password"}
	right := map[string]interface{}{"email": user.Email, "password": "password123"}

	for i := 0; i < 3; i++ {
		code, env := srv.Do(t, http.MethodPost, "/api/auth/login", "", wrong)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid credentials!", env.Message)
	}

	// correct password is refused while blocked
	code, env := srv.Do(t, http.MethodPost, "/api/auth/login", "", right)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, env.Message, "temporarily blocked")

	var stored models.User
	require.NoError(t, srv.DB.First(&stored, user.ID).Error)
	assert.True(t, stored.IsBlocked)
	require.NotNil(t, stored.BlockedUntil)

	// once the block has expired the counters reset
	expired := time.Now().Add(-time.Second)
	require.NoError(t, srv.DB.Model(&stored).Update("blocked_until", expired).Error)
	code, env = srv.Do(t, http.MethodPost, "/api/auth/login", "", right)
	require.Equal(t, http.StatusOK, code, env.Message)
	var session struct {
		Token string `json:"token"`
	}
	env.Decode(t, &session)
	assert.NotEmpty(t, session.Token)

	require.NoError(t, srv.DB.First(&stored, user.ID).Error)
	assert.False(t, stored.IsBlocked)
	assert.Equal(t, 0, stored.FailedLoginAttempts)

	var attempts int64
	require.NoError(t, srv.DB.Model(&models.LoginTracking{}).Where("user_id = ?", user.ID).Count(&attempts).Error)
	assert.Equal(t, int64(4), attempts)

	code, _ = srv.Do(t, http.MethodGet, "/api/auth/me", session.Token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDisabledAccountCannotUseSession(t *testing.T) {
	srv := testutil.NewServer(t)
	user, token := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)
	require.NoError(t, srv.DB.Model(&user).Update("is_active", false).Error)

	code, _ := srv.Do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = srv.Do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
