package supportRoutes

import (
	supportControllers "academy/controllers/support"
	"academy/middleware"
	"academy/validators"
	supportValidators "academy/validators/support"

	"github.com/gofiber/fiber/v2"
)

func SetupSupportRoutes(app *fiber.App) {
	app.Post("/api/contact", supportValidators.CreateContactMessage(), supportControllers.CreateContactMessage)

	inbox := app.Group("/api/admin/contact-messages", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware("contact.manage"))
	inbox.Get("", supportValidators.ListContactMessages(), supportControllers.ListContactMessages)
	inbox.Patch("/:id", validators.ParamID("id"), supportValidators.PatchContactMessage(), supportControllers.PatchContactMessage)
	inbox.Delete("/:id", validators.ParamID("id"), supportControllers.DeleteContactMessage)
}
