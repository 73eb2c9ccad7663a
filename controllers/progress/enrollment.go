package progressController

import (
	"academy/apperr"
	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/models"
	"academy/utils"
	"academy/validators"
	courseValidator "academy/validators/course"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetEnrollments handles GET /api/user-enrollments. Holders of
// enrollments.manage may pass ?userId= to read another user's enrollments.
func GetEnrollments(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	target := userID
	if id, ok := validators.QueryID(c, "userId"); ok && id != userID {
		allowed, err := middleware.HasPermission(c, "enrollments.manage")
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		if !allowed {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
		}
		target = id
	}

	var enrollments []models.Enrollment
	if err := database.Database.Db.Where("user_id = ?", target).
		Preload("Module").
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

// CreateEnrollment handles POST /api/user-enrollments. The payment reference is
// verified with the gateway; an existing enrollment for the same module is
// updated rather than duplicated.
func CreateEnrollment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedEnrollment").(*courseValidator.EnrollmentRequest)
	db := database.Database.Db

	var module models.Module
	if err := db.Where("id = ? AND is_active = ?", reqData.ModuleID, true).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found or not active!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	status := models.PaymentPending
	amount := reqData.Amount
	if reqData.PaymentReference != "" {
		payment, err := utils.GetPaymentVerifier().Verify(c.UserContext(), reqData.PaymentReference)
		switch {
		case errors.Is(err, utils.ErrPaymentNotFound):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment reference not found!", nil)
		case err != nil:
			logger.Log.Error("payment verification failed", "user_id", userID, "module_id", module.ID, "error", err)
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment could not be verified, please retry!", nil)
		case payment.Captured():
			status = models.PaymentCompleted
			if payment.Amount > 0 {
				amount = payment.Amount
			}
		case payment.Pending():
			status = models.PaymentPending
		default:
			status = models.PaymentFailed
		}
	}

	var enrollment models.Enrollment
	created := false
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND module_id = ?", userID, module.ID).First(&enrollment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			enrollment = models.Enrollment{
				UserID:           userID,
				ModuleID:         module.ID,
				PaymentStatus:    status,
				PaymentReference: reqData.PaymentReference,
				AmountPaid:       amount,
			}
			created = true
			return tx.Create(&enrollment).Error
		}
		if err != nil {
			return err
		}
		if enrollment.Paid() {
			return apperr.Conflict("Already enrolled in this module!")
		}
		return tx.Model(&enrollment).Updates(map[string]interface{}{
			"payment_status":    status,
			"payment_reference": reqData.PaymentReference,
			"amount_paid":       amount,
		}).Error
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if status == models.PaymentCompleted {
		var user models.User
		if err := db.Preload("Profile").Select("id", "email", "name").First(&user, userID).Error; err == nil {
			name := user.Name
			if user.Profile != nil && user.Profile.FullName() != "" {
				name = user.Profile.FullName()
			}
			utils.SendEnrollmentEmail(user.Email, name, module.Title)
		}
	}

	enrollment.Module = &module
	code := fiber.StatusOK
	if created {
		code = fiber.StatusCreated
	}
	return middleware.JsonResponse(c, code, true, "Enrollment saved successfully!", enrollment)
}

// PatchEnrollment handles PATCH /api/user-enrollments/:id. The owner may set an
// exam date; overriding progressPercentage or settling the payment needs
// enrollments.manage.
func PatchEnrollment(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedEnrollmentPatch").(*courseValidator.EnrollmentPatchRequest)
	id := c.Locals("id").(uint)
	db := database.Database.Db
	canManage, err := middleware.HasPermission(c, "enrollments.manage")
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var enrollment models.Enrollment
	if err := db.First(&enrollment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	if enrollment.UserID != userID && !canManage {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}
	if reqData.ProgressPercentage != nil && !canManage {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only administrators can set progress!", nil)
	}
	if reqData.PaymentStatus != "" && !canManage {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only administrators can confirm payments!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.ExamDate != nil {
		updates["exam_date"] = *reqData.ExamDate
	}
	if reqData.ProgressPercentage != nil {
		updates["progress_percentage"] = *reqData.ProgressPercentage
	}
	if reqData.PaymentStatus != "" {
		updates["payment_status"] = reqData.PaymentStatus
		if reqData.AmountPaid != nil {
			updates["amount_paid"] = *reqData.AmountPaid
		}
	}
	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
	}
	updates["version"] = gorm.Expr("version + 1")

	if err := db.Model(&enrollment).Updates(updates).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if reqData.PaymentStatus != "" && reqData.PaymentStatus != enrollment.PaymentStatus {
		logger.Log.Info("enrollment payment settled", "enrollment_id", enrollment.ID, "user_id", userID, "status", reqData.PaymentStatus)
	}
	if err := db.First(&enrollment, id).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment updated successfully!", enrollment)
}
