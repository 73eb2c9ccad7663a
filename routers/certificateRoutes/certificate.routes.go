package certificateRoutes

import (
	certificateController "academy/controllers/certificate"
	"academy/middleware"
	"academy/validators"
	adminValidator "academy/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupCertificateRoutes(app *fiber.App) {
	certificates := app.Group("/api/certificates", middleware.JWTMiddleware)
	certificates.Get("/status", certificateController.GetStatus)
	certificates.Get("/me", certificateController.GetMyCertificate)
	certificates.Get("/me.png", certificateController.GetMyCertificatePNG)

	templates := app.Group("/api/admin/certificate-templates", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware("certificates.manage"))
	templates.Get("", certificateController.GetTemplates)
	templates.Post("", adminValidator.SaveTemplate(), certificateController.CreateTemplate)
	templates.Put("/:id", validators.ParamID("id"), adminValidator.SaveTemplate(), certificateController.UpdateTemplate)
	templates.Delete("/:id", validators.ParamID("id"), certificateController.DeleteTemplate)
}
