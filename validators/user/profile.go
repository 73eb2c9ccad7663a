package userValidator

import (
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type ProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,notblank,max=60"`
	LastName  *string `json:"lastName" validate:"omitempty,max=60"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
}

func UpdateProfile() fiber.Handler {
	return validators.Body[ProfileRequest]("validatedProfile")
}
