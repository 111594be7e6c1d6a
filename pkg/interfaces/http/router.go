package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/config"
)

// NewApp creates the fiber application with its middleware and routes
func NewApp(cfg *config.Config, planning *PlanningHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{Code: "ERROR", Message: err.Error()})
		},
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	Router(app, planning)
	return app
}

// Router registers the API routes
func Router(app *fiber.App, planning *PlanningHandler) {
	v1 := app.Group("/v1")

	v1.Post("/mrp/run", planning.RunMRP)
	v1.Post("/routes/plan", planning.PlanRoutes)
	v1.Get("/runs/:id/events", planning.RunEvents)
}
