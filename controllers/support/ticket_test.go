package supportControllers_test

import (
	"academy/models"
	"academy/testutil"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactInbox(t *testing.T) {
	srv := testutil.NewServer(t)
	_, adminToken := srv.CreateUser(t, "admin@example.com", models.RoleAdmin)
	_, learnerToken := srv.CreateUser(t, "learner@example.com", models.RolePractitioner)

	code, env := srv.Do(t, http.MethodPost, "/api/contact", "", map[string]interface{}{
		"name":    "  Visitor ",
		"email":   "Visitor@Example.com",
		"subject": "Pricing",
		"message": "How much is the foundations module?",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created struct {
		ID uint `json:"id"`
	}
	env.Decode(t, &created)

	var stored models.ContactMessage
	require.NoError(t, srv.DB.First(&stored, created.ID).Error)
	assert.Equal(t, "Visitor", stored.Name)
	assert.Equal(t, "visitor@example.com", stored.Email)
	assert.False(t, stored.IsRead)

	code, _ = srv.Do(t, http.MethodPost, "/api/contact", "", map[string]interface{}{
		"name": "Visitor", "email": "visitor@example.com", "message": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = srv.Do(t, http.MethodGet, "/api/admin/contact-messages", learnerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	path := fmt.Sprintf("/api/admin/contact-messages/%d", created.ID)
	code, _ = srv.Do(t, http.MethodPatch, path, adminToken, map[string]interface{}{"isRead": true})
	require.Equal(t, http.StatusOK, code)

	code, env = srv.Do(t, http.MethodGet, "/api/admin/contact-messages?unread=true", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var inbox struct {
		Messages []models.ContactMessage `json:"messages"`
	}
	env.Decode(t, &inbox)
	assert.Empty(t, inbox.Messages)

	code, _ = srv.Do(t, http.MethodDelete, path, adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = srv.Do(t, http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
