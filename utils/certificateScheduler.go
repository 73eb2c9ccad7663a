package utils

import (
	"academy/logger"
	"academy/models"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeCertificateScheduler starts the job that emails learners whose
// certificate has become available. The gate itself is evaluated on read;
// this job only sends the notice.
func InitializeCertificateScheduler(db *gorm.DB, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		sent, err := NotifyAvailableCertificates(db, time.Now())
		if err != nil {
			logger.Log.Error("certificate notifier failed", "error", err)
			return
		}
		if sent > 0 {
			logger.Log.Info("certificate notices sent", "count", sent)
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	logger.Log.Info("certificate scheduler started", "spec", spec)
	return c, nil
}

// NotifyAvailableCertificates mails every passed, un-notified profile whose
// availability time is at or before now and returns how many were sent.
func NotifyAvailableCertificates(db *gorm.DB, now time.Time) (int, error) {
	var profiles []models.Profile
	if err := db.
		Where("test_completed = ? AND certificate_notified = ? AND certificate_available_at IS NOT NULL AND certificate_available_at <= ?", true, false, now).
		Find(&profiles).Error; err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range profiles {
		var user models.User
		if err := db.Select("id", "email", "name").First(&user, p.UserID).Error; err != nil {
			logger.Log.Warn("certificate notice skipped", "user_id", p.UserID, "error", err)
			continue
		}
		name := p.FullName()
		if name == "" {
			name = user.Name
		}
		if err := SendCertificateReadyEmail(user.Email, name, p.CertificateNumber); err != nil {
			logger.Log.Error("certificate notice failed", "user_id", p.UserID, "error", err)
			continue
		}
		if err := db.Model(&models.Profile{}).Where("id = ?", p.ID).Update("certificate_notified", true).Error; err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
