package courseRoutes

import (
	controllers "academy/controllers/course"
	"academy/middleware"
	"academy/validators"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes registers the module / level / sub-topic / content
// hierarchy. Reads need content.view, writes need modules.manage.
func SetupCourseRoutes(app *fiber.App) {
	view := middleware.CheckPermissionMiddleware("content.view")
	manage := middleware.CheckPermissionMiddleware("modules.manage")
	id := validators.ParamID("id")

	modules := app.Group("/api/modules", middleware.JWTMiddleware)
	modules.Get("", view, controllers.GetModules)
	modules.Post("", manage, courseValidator.CreateModule(), controllers.CreateModule)
	modules.Get("/:id", view, id, controllers.GetModule)
	modules.Put("/:id", manage, id, courseValidator.CreateModule(), controllers.UpdateModule)
	modules.Delete("/:id", manage, id, controllers.DeleteModule)

	levels := app.Group("/api/levels", middleware.JWTMiddleware)
	levels.Get("", view, controllers.GetLevels)
	levels.Post("", manage, courseValidator.CreateLevel(), controllers.CreateLevel)
	levels.Put("/:id", manage, id, courseValidator.CreateLevel(), controllers.UpdateLevel)
	levels.Delete("/:id", manage, id, controllers.DeleteLevel)
	levels.Get("/:id/topics", view, id, controllers.GetLevelTopics)

	subTopics := app.Group("/api/sub-topics", middleware.JWTMiddleware)
	subTopics.Get("", view, controllers.GetSubTopics)
	subTopics.Post("", manage, courseValidator.SaveSubTopic(), controllers.CreateSubTopic)
	subTopics.Put("", manage, courseValidator.SaveSubTopic(), controllers.UpdateSubTopic)
	subTopics.Delete("/:id", manage, id, controllers.DeleteSubTopic)
	subTopics.Post("/:id/attachments", manage, id, controllers.UploadAttachment)

	contents := app.Group("/api/sub-topic-content", middleware.JWTMiddleware)
	contents.Get("", view, controllers.GetContents)
	contents.Post("", manage, courseValidator.SaveContent(), controllers.CreateContent)
	contents.Put("", manage, courseValidator.SaveContent(), controllers.UpdateContent)
	contents.Delete("", manage, controllers.DeleteContent)
}
