package authController

import (
	"academy/config"
	"academy/database"
	"academy/logger"
	"academy/middleware"
	"academy/models"
	"academy/utils"
	"academy/validators"
	authValidator "academy/validators/auth"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 3
	lockoutDuration = time.Minute
	failureWindow   = 15 * time.Minute
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sessionPayload(user models.User) fiber.Map {
	data := fiber.Map{"user": user}
	if user.Profile != nil && user.Profile.Role != nil {
		data["role"] = user.Profile.Role.Name
	}
	return data
}

// Signup creates the user and a profile carrying the default role.
func Signup(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.SignupRequest)
	db := database.Database.Db
	email := normalizeEmail(reqData.Email)

	// Check if email already exists
	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if existing > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	var role models.Role
	if err := db.Where("name = ?", database.DefaultRoleName()).First(&role).Error; err != nil {
		logger.Log.Error("default role missing", "role", database.DefaultRoleName(), "error", err)
		return middleware.ErrorResponse(c, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	newUser := models.User{
		Name:     strings.TrimSpace(reqData.Name),
		Email:    email,
		Password: string(hashedPassword),
		IsActive: true,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID:    newUser.ID,
			FirstName: strings.TrimSpace(reqData.FirstName),
			LastName:  strings.TrimSpace(reqData.LastName),
			RoleID:    role.ID,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		profile.Role = &role
		newUser.Profile = &profile
		return nil
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	logger.Log.Info("user registered", "user_id", newUser.ID)
	utils.SendWelcomeEmail(newUser.Email, newUser.Name)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", sessionPayload(newUser))
}

// Login checks the password, applies the temporary lockout after repeated
// failures and sets the session cookie.
func Login(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*authValidator.LoginRequest)
	db := database.Database.Db
	now := time.Now()

	var user models.User
	if err := db.Where("email = ?", normalizeEmail(reqData.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	if !user.IsActive {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Account is disabled!", nil)
	}

	// Check if the user is blocked
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}
	if user.IsBlocked || (user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failureWindow) {
		user.IsBlocked = false
		user.BlockedUntil = nil
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		// Block user after repeated failures
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.IsBlocked = true
			unblockTime := now.Add(lockoutDuration)
			user.BlockedUntil = &unblockTime
			logger.Log.Warn("account locked after failed logins", "user_id", user.ID, "attempts", user.FailedLoginAttempts)
		}
		if err := db.Select("failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").Save(&user).Error; err != nil {
			logger.Log.Error("saving failed login", "user_id", user.ID, "error", err)
		}
		recordLogin(c, user.ID, false, now)

		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.IsBlocked = false
	user.BlockedUntil = nil
	if err := db.Select("last_login", "failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").Save(&user).Error; err != nil {
		logger.Log.Error("saving last login time", "user_id", user.ID, "error", err)
	}
	recordLogin(c, user.ID, true, now)

	token, err := middleware.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	middleware.SetSessionCookie(c, token)

	if err := db.Preload("Profile.Role").First(&user, user.ID).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	data := sessionPayload(user)
	data["token"] = token
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", data)
}

func recordLogin(c *fiber.Ctx, userID uint, success bool, at time.Time) {
	ip := c.IP()
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	tracking := models.LoginTracking{
		UserID:    userID,
		IPAddress: ip,
		Device:    c.Get(fiber.HeaderUserAgent),
		Success:   success,
		Timestamp: at,
	}
	if err := database.Database.Db.Create(&tracking).Error; err != nil {
		logger.Log.Error("saving login tracking", "user_id", userID, "error", err)
	}
}

func Logout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully.", nil)
}

// Me returns the session user with profile and role.
func Me(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	var user models.User
	if err := database.Database.Db.Preload("Profile.Role").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched successfully.", sessionPayload(user))
}

func ChangePassword(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedUser").(*authValidator.ChangePasswordRequest)
	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Validate current password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Current password is incorrect!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}

func LoginHistoryList(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData := c.Locals("validatedLoginHistory").(*validators.Pagination)
	page, limit, offset := reqData.Normalize()
	db := database.Database.Db

	var history []models.LoginTracking
	var total int64
	if err := db.Model(&models.LoginTracking{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if err := db.Where("user_id = ?", userID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&history).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": history,
		"pagination":    utils.PageMeta(total, page, limit),
	})
}
