package assessmentRoutes

import (
	assessmentController "academy/controllers/assessment"
	"academy/middleware"
	"academy/validators"
	assessmentValidator "academy/validators/assessment"

	"github.com/gofiber/fiber/v2"
)

func SetupAssessmentRoutes(app *fiber.App) {
	auth := middleware.JWTMiddleware
	view := middleware.CheckPermissionMiddleware("content.view")
	manageTests := middleware.CheckPermissionMiddleware("tests.manage")

	app.Get("/api/sub-topic-tests", auth, view, assessmentController.GetSubTopicTests)
	app.Post("/api/sub-topic-tests", auth, manageTests, assessmentValidator.CreateTest(), assessmentController.CreateSubTopicTest)
	app.Get("/api/level-tests", auth, view, assessmentController.GetLevelTests)
	app.Post("/api/level-tests", auth, manageTests, assessmentValidator.CreateTest(), assessmentController.CreateLevelTest)
	app.Get("/api/module-tests", auth, view, assessmentController.GetModuleTests)
	app.Post("/api/module-tests", auth, manageTests, assessmentValidator.CreateTest(), assessmentController.CreateModuleTest)
	app.Get("/api/exam-configurations", auth, view, assessmentController.GetExamConfigurations)
	app.Post("/api/exam-configurations", auth, manageTests, assessmentValidator.CreateTest(), assessmentController.CreateExamConfiguration)

	// :id is "<kind>-<id>", e.g. level-4
	testModels := app.Group("/api/test-models/:id", auth)
	testModels.Get("/questions", view, assessmentController.GetTestQuestions)
	testModels.Post("/questions", manageTests, assessmentValidator.AddTestQuestion(), assessmentController.AddTestQuestion)
	testModels.Put("/questions", manageTests, assessmentValidator.ReplaceTestQuestion(), assessmentController.ReplaceTestQuestion)
	testModels.Delete("/questions", manageTests, assessmentController.RemoveTestQuestion)
	testModels.Post("/attempts", middleware.CheckPermissionMiddleware("tests.take"), assessmentValidator.SubmitAttempt(), assessmentController.SubmitAttempt)
	testModels.Get("/attempts", assessmentController.GetAttempts)
	app.Get("/api/test-attempts", auth, assessmentController.GetAttempts)

	questions := app.Group("/api/questions", auth, middleware.CheckPermissionMiddleware("questions.manage"))
	questions.Get("", assessmentController.GetQuestions)
	questions.Post("", assessmentValidator.SaveQuestion(), assessmentController.CreateQuestion)
	questions.Post("/import", assessmentValidator.ImportQuestions(), assessmentController.ImportQuestions)
	questions.Put("/:id", validators.ParamID("id"), assessmentValidator.SaveQuestion(), assessmentController.UpdateQuestion)
	questions.Delete("/:id", validators.ParamID("id"), assessmentController.DeleteQuestion)
}
