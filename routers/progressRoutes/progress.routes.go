package progressRoutes

import (
	progressController "academy/controllers/progress"
	"academy/middleware"
	"academy/validators"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressRoutes registers completion, progress reads and enrollments.
func SetupProgressRoutes(app *fiber.App) {
	track := middleware.CheckPermissionMiddleware("progress.track")
	id := validators.ParamID("id")

	app.Post("/api/sub-topics/complete", middleware.JWTMiddleware, track, courseValidator.CompleteSubTopic(), progressController.CompleteSubTopic)

	progress := app.Group("/api/user-progress", middleware.JWTMiddleware, track)
	progress.Get("", progressController.GetUserProgress)
	progress.Post("", courseValidator.ContentProgress(), progressController.SaveUserProgress)

	app.Get("/api/levels/:id/progress", middleware.JWTMiddleware, track, id, progressController.GetLevelProgress)
	app.Get("/api/modules/:id/progress", middleware.JWTMiddleware, track, id, progressController.GetModuleProgress)

	enrollments := app.Group("/api/user-enrollments", middleware.JWTMiddleware, middleware.CheckPermissionMiddleware("content.view"))
	enrollments.Get("", progressController.GetEnrollments)
	enrollments.Post("", courseValidator.CreateEnrollment(), progressController.CreateEnrollment)
	enrollments.Patch("/:id", id, courseValidator.PatchEnrollment(), progressController.PatchEnrollment)
}
