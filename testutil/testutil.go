// Package testutil spins up the full app on an in-memory sqlite database for
// handler tests.
package testutil

import (
	"academy/config"
	"academy/database"
	"academy/middleware"
	"academy/models"
	"academy/routers"
	"academy/utils"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Server struct {
	App    *fiber.App
	DB     *gorm.DB
	Mailer *utils.ConsoleMailer
}

// Envelope mirrors middleware.JsonResponse.
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e Envelope) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v), string(e.Data))
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:            "test-secret",
		SessionCookieName: "academy_session",
		SessionTTL:        time.Hour,
		SaltRound:         bcrypt.MinCost,
		CorsOrigins:       "*",
		CertificatePrefix: "CERT",
		CertificateDelay:  48 * time.Hour,
	}

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedRBAC(db))
	database.Database = database.DbInstance{Db: db}

	mailer := &utils.ConsoleMailer{}
	utils.SetMailer(mailer)
	utils.SetPaymentVerifier(StaticVerifier{})
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &Server{App: routers.New(false), DB: db, Mailer: mailer}
}

// StaticVerifier treats references starting with "paid-" as captured,
// "pending-" as unsettled and everything else as declined.
type StaticVerifier struct{}

func (StaticVerifier) Verify(_ context.Context, reference string) (utils.PaymentResult, error) {
	switch {
	case strings.HasPrefix(reference, "paid-"):
		return utils.PaymentResult{Reference: reference, Status: "captured"}, nil
	case strings.HasPrefix(reference, "pending-"):
		return utils.PaymentResult{Reference: reference, Status: "pending"}, nil
	}
	return utils.PaymentResult{Reference: reference, Status: "declined"}, nil
}

// CreateUser inserts an active user with the given role and returns it with
// a session token.
func (s *Server) CreateUser(t *testing.T, email, roleName string) (models.User, string) {
	t.Helper()
	var role models.Role
	require.NoError(t, s.DB.Where("name = ?", roleName).First(&role).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: email, Email: email, Password: string(hash), IsActive: true}
	require.NoError(t, s.DB.Create(&user).Error)
	require.NoError(t, s.DB.Create(&models.Profile{UserID: user.ID, RoleID: role.ID}).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Email)
	require.NoError(t, err)
	return user, token
}

// Do sends a JSON request and decodes the envelope. body may be nil.
func (s *Server) Do(t *testing.T, method, path, token string, body interface{}) (int, Envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env Envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

// Raw is Do for non-JSON responses.
func (s *Server) Raw(t *testing.T, method, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Course is a published module with one level, two ordered sub-topics and
// one required content item in each.
type Course struct {
	Module    models.Module
	Level     models.Level
	SubTopics [2]models.SubTopic
	Contents  [2]models.Content
}

func (s *Server) SeedCourse(t *testing.T) Course {
	t.Helper()
	var c Course
	c.Module = models.Module{Title: "Foundations", Price: 100, IsActive: true}
	require.NoError(t, s.DB.Create(&c.Module).Error)
	c.Level = models.Level{ModuleID: c.Module.ID, Title: "Level 1", OrderIndex: 0, IsActive: true}
	require.NoError(t, s.DB.Create(&c.Level).Error)
	for i := range c.SubTopics {
		c.SubTopics[i] = models.SubTopic{LevelID: c.Level.ID, Title: "Part", OrderIndex: i, IsActive: true}
		require.NoError(t, s.DB.Create(&c.SubTopics[i]).Error)
		c.Contents[i] = models.Content{
			SubTopicID:  c.SubTopics[i].ID,
			Title:       "Reading",
			ContentType: models.ContentText,
			IsRequired:  true,
			IsPublished: true,
		}
		require.NoError(t, s.DB.Create(&c.Contents[i]).Error)
	}
	return c
}

// Enroll records a paid enrollment directly.
func (s *Server) Enroll(t *testing.T, userID, moduleID uint) models.Enrollment {
	t.Helper()
	e := models.Enrollment{UserID: userID, ModuleID: moduleID, PaymentStatus: models.PaymentCompleted}
	require.NoError(t, s.DB.Create(&e).Error)
	return e
}
