package userRoutes

import (
	userController "academy/controllers/userControllers"
	"academy/middleware"
	userValidator "academy/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	profileGroup := app.Group("/api/profile", middleware.JWTMiddleware)

	profileGroup.Get("", userController.GetProfile)
	profileGroup.Put("", userValidator.UpdateProfile(), userController.UpdateProfile)
}
