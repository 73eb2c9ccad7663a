package authValidator

import (
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name      string `json:"name" validate:"notblank,min=2,max=120"`
	FirstName string `json:"firstName" validate:"omitempty,max=60"`
	LastName  string `json:"lastName" validate:"omitempty,max=60"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,nefield=CurrentPassword"`
	CnfPassword     string `json:"cnfPassword" validate:"required,eqfield=NewPassword"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return validators.Body[SignupRequest]("validatedUser")
}

// Login validator middleware
func Login() fiber.Handler {
	return validators.Body[LoginRequest]("validatedUser")
}

// ChangePassword validator middleware
func ChangePassword() fiber.Handler {
	return validators.Body[ChangePasswordRequest]("validatedUser")
}

// LoginHistoryList validates page/limit for the login history listing
func LoginHistoryList() fiber.Handler {
	return validators.Query[validators.Pagination]("validatedLoginHistory")
}
