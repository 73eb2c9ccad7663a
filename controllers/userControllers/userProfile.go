package userController

import (
	"academy/certificate"
	"academy/database"
	"academy/middleware"
	"academy/models"
	userValidator "academy/validators/user"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetProfile returns the session user, profile, role and certificate status.
func GetProfile(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var user models.User
	if err := database.Database.Db.Preload("Profile.Role").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	status := certificate.NotEligible
	if user.Profile != nil && user.Profile.TestCompleted {
		status = certificate.Gate(user.Profile.CertificateAvailableAt, time.Now())
	}

	var enrollments int64
	database.Database.Db.Model(&models.Enrollment{}).
		Where("user_id = ? AND payment_status = ?", userID, models.PaymentCompleted).
		Count(&enrollments)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", fiber.Map{
		"user":              user,
		"certificateStatus": status,
		"paidEnrollments":   enrollments,
	})
}

// UpdateProfile applies the fields present in the request.
func UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedProfile").(*userValidator.ProfileRequest)
	db := database.Database.Db

	var profile models.Profile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Profile not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	updates := map[string]interface{}{}
	if reqData.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*reqData.FirstName)
	}
	if reqData.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*reqData.LastName)
	}
	if reqData.Phone != nil {
		updates["phone"] = strings.TrimSpace(*reqData.Phone)
	}
	if reqData.Bio != nil {
		updates["bio"] = *reqData.Bio
	}
	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
	}

	if err := db.Model(&profile).Updates(updates).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := db.Preload("Role").First(&profile, profile.ID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", profile)
}
