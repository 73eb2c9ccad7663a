// Package routers assembles the fiber application.
package routers

import (
	"academy/config"
	"academy/middleware"
	assessmentRoutes "academy/routers/assessmentRoutes"
	authRoutes "academy/routers/authRoutes"
	certificateRoutes "academy/routers/certificateRoutes"
	courseRoutes "academy/routers/courseRoutes"
	progressRoutes "academy/routers/progressRoutes"
	superAdminRoutes "academy/routers/superAdmin"
	supportRoutes "academy/routers/supportRoutes"
	userProfileRoutes "academy/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the app with every route registered. accessLog toggles the
// request log line.
func New(accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    20 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppConfig.CorsOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: config.AppConfig.CorsOrigins != "*",
	}))

	if accessLog {
		// Enable the built-in logger middleware to log all requests
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	// Serve uploaded attachments
	app.Static("/uploads", "./uploads")

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	progressRoutes.SetupProgressRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	assessmentRoutes.SetupAssessmentRoutes(app)
	certificateRoutes.SetupCertificateRoutes(app)
	supportRoutes.SetupSupportRoutes(app)
	superAdminRoutes.SetupSuperAdminRoutes(app)

	return app
}
