package certificateController

import (
	"academy/apperr"
	"academy/assessment"
	"academy/certificate"
	"academy/database"
	"academy/middleware"
	"academy/models"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const defaultModuleTitle = "Practitioner Certification"

func loadProfile(db *gorm.DB, userID uint) (models.User, models.Profile, error) {
	var user models.User
	if err := db.Preload("Profile").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, models.Profile{}, apperr.NotFound("User not found!")
		}
		return user, models.Profile{}, err
	}
	if user.Profile == nil {
		return user, models.Profile{}, apperr.NotFound("Profile not found!")
	}
	return user, *user.Profile, nil
}

// statusOf evaluates the gate for a profile at now.
func statusOf(p models.Profile, now time.Time) certificate.Status {
	if !p.TestCompleted {
		return certificate.NotEligible
	}
	return certificate.Gate(p.CertificateAvailableAt, now)
}

// GetStatus handles GET /api/certificates/status.
func GetStatus(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	_, profile, err := loadProfile(database.Database.Db, userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	now := time.Now()
	status := statusOf(profile, now)
	data := fiber.Map{
		"status":            status,
		"testCompleted":     profile.TestCompleted,
		"testScore":         profile.TestScore,
		"testPassedAt":      profile.TestPassedAt,
		"availableAt":       profile.CertificateAvailableAt,
		"certificateIssued": profile.CertificateIssued,
		"remainingSeconds":  0,
	}
	if status == certificate.Processing {
		data["remainingSeconds"] = int64(profile.CertificateAvailableAt.Sub(now).Seconds())
	}
	if status == certificate.Available {
		data["certificateNumber"] = profile.CertificateNumber
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate status fetched successfully!", data)
}

// certificateData assembles render data for an available certificate.
func certificateData(db *gorm.DB, userID uint, now time.Time) (certificate.Data, models.Profile, error) {
	user, profile, err := loadProfile(db, userID)
	if err != nil {
		return certificate.Data{}, profile, err
	}
	switch statusOf(profile, now) {
	case certificate.NotEligible:
		return certificate.Data{}, profile, apperr.Forbidden("You have not passed the certification exam yet!")
	case certificate.Processing:
		return certificate.Data{}, profile, apperr.Forbidden("Your certificate is being processed, please check back later!")
	}

	name := profile.FullName()
	if name == "" {
		name = user.Name
	}
	data := certificate.Data{
		Name:              name,
		ModuleTitle:       defaultModuleTitle,
		CertificateNumber: profile.CertificateNumber,
		IssuedAt:          *profile.CertificateAvailableAt,
	}
	if profile.TestScore != nil {
		data.Score = *profile.TestScore
	}

	var attempt models.TestAttempt
	err = db.Where("user_id = ? AND model_type = ? AND passed = ?", userID, string(assessment.KindExam), true).
		Order("created_at ASC").First(&attempt).Error
	if err == nil {
		var exam models.ExamConfiguration
		if db.First(&exam, attempt.ModelID).Error == nil && exam.ModuleID != nil {
			var module models.Module
			if db.Select("id", "title").First(&module, *exam.ModuleID).Error == nil {
				data.ModuleTitle = module.Title
			}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return certificate.Data{}, profile, err
	}
	return data, profile, nil
}

func markIssued(db *gorm.DB, profile models.Profile) error {
	if profile.CertificateIssued {
		return nil
	}
	return db.Model(&models.Profile{}).Where("id = ?", profile.ID).Update("certificate_issued", true).Error
}

func activeTemplate(db *gorm.DB) (string, error) {
	var tmpl models.CertificateTemplate
	err := db.Where("is_active = ?", true).Order("updated_at DESC").First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return certificate.DefaultTemplate, nil
	}
	return tmpl.HTML, err
}

// GetMyCertificate handles GET /api/certificates/me and renders HTML.
func GetMyCertificate(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	db := database.Database.Db

	data, profile, err := certificateData(db, userID, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	tmpl, err := activeTemplate(db)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	html, err := certificate.RenderHTML(tmpl, data)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := markIssued(db, profile); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	c.Type("html", "utf-8")
	return c.SendString(html)
}

// GetMyCertificatePNG handles GET /api/certificates/me.png.
func GetMyCertificatePNG(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	db := database.Database.Db

	data, profile, err := certificateData(db, userID, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	img, err := certificate.RenderPNG(data)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := markIssued(db, profile); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+data.CertificateNumber+`.png"`)
	c.Type("png")
	return c.Send(img)
}
