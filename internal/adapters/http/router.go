// Package http exposes the recipe service over a fiber application.
package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/melih/dockgen/internal/config"
	"github.com/melih/dockgen/internal/core/ports"
)

// NewApp builds the fiber application with every route registered.
func NewApp(cfg config.HTTP, service ports.RecipeService, logger *logrus.Entry) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "dockgen",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{ContextKey: requestIDKey}))
	app.Use(requestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigin,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Content-Type, Authorization, X-Requested-With",
		MaxAge:       86400,
	}))

	h := NewRecipeHandler(service)
	app.Get("/health", h.Health)

	api := app.Group("/api")
	api.Post("/generate-build", h.GenerateBuild)
	api.Post("/push-dockerfile", h.PushDockerfile)

	jobs := api.Group("/jobs")
	jobs.Get("/", h.ListJobs)
	jobs.Get("/:id", h.GetJob)

	return app
}
