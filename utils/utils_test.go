package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"academy/config"
	"academy/database"
	"academy/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	got := SplitLines("  Breathing basics \r\n\n- Posture\n* Grounding\n   ")
	assert.Equal(t, []string{"Breathing basics", "Posture", "Grounding"}, got)
	assert.Empty(t, SplitLines(" \n "))
}

func TestGatewayVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/payments/ok-1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"reference":"ok-1","status":"captured","amount":120}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	v := NewGatewayVerifier(srv.URL+"/", "key-1")

	res, err := v.Verify(context.Background(), "ok-1")
	require.NoError(t, err)
	assert.True(t, res.Captured())
	assert.Equal(t, 120.0, res.Amount)

	_, err = v.Verify(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestReferenceVerifierNeverCaptures(t *testing.T) {
	InitPaymentVerifier(&config.Config{})
	t.Cleanup(func() { SetPaymentVerifier(referenceVerifier{}) })

	for _, ref := range []string{"", "abc", "made-up-by-learner"} {
		res, err := GetPaymentVerifier().Verify(context.Background(), ref)
		require.NoError(t, err)
		assert.False(t, res.Captured(), ref)
		assert.True(t, res.Pending(), ref)
	}
}

func TestNotifyAvailableCertificates(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mail := &ConsoleMailer{}
	SetMailer(mail)
	defer SetMailer(&ConsoleMailer{})

	now := time.Now()
	past, future := now.Add(-time.Minute), now.Add(time.Hour)

	ready := models.User{Name: "ready", Email: "ready@example.com", Password: "x", IsActive: true}
	waiting := models.User{Name: "waiting", Email: "waiting@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&ready).Error)
	require.NoError(t, db.Create(&waiting).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: ready.ID, RoleID: 1, TestCompleted: true, CertificateAvailableAt: &past, CertificateNumber: "CERT-AAAA0001"}).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: waiting.ID, RoleID: 1, TestCompleted: true, CertificateAvailableAt: &future, CertificateNumber: "CERT-AAAA0002"}).Error)

	sent, err := NotifyAvailableCertificates(db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, mail.Messages(), 1)
	assert.Equal(t, "ready@example.com", mail.Messages()[0].To)
	assert.Contains(t, mail.Messages()[0].HTML, "CERT-AAAA0001")

	sent, err = NotifyAvailableCertificates(db, now)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
