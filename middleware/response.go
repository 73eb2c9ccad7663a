package middleware

import (
	"academy/apperr"
	"academy/logger"
	"errors"

	"github.com/gofiber/fiber/v2"
)

const genericErrorMessage = "Something went wrong!"

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse writes err in the standard envelope. Anything that is not an
// *apperr.Error is logged and reported as a generic 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	if e, ok := apperr.As(err); ok {
		msg := e.Message
		if msg == "" {
			msg = e.Error()
		}
		if e.Status >= fiber.StatusInternalServerError {
			logger.Log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			msg = genericErrorMessage
		}
		return JsonResponse(c, e.Status, false, msg, nil)
	}
	logger.Log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return JsonResponse(c, fiber.StatusInternalServerError, false, genericErrorMessage, nil)
}

// ErrorHandler is installed as the fiber app ErrorHandler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return ErrorResponse(c, err)
}
