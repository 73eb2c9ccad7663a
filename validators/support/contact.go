package supportValidators

import (
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"notblank,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"notblank,min=10,max=5000"`
}

type ContactPatchRequest struct {
	IsRead *bool `json:"isRead" validate:"required"`
}

type ContactListQuery struct {
	validators.Pagination
	Unread bool `query:"unread"`
}

func CreateContactMessage() fiber.Handler {
	return validators.Body[ContactRequest]("validatedContact")
}

func PatchContactMessage() fiber.Handler {
	return validators.Body[ContactPatchRequest]("validatedContact")
}

func ListContactMessages() fiber.Handler {
	return validators.Query[ContactListQuery]("validatedContactList")
}
