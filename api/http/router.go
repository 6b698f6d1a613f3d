package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"github.com/artem13815/taskboard/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, auth *handlers.AuthHandler, tasks *handlers.TaskHandler, health *handlers.HealthHandler, authMW fiber.Handler) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", health.Health)
	api.Get("/ready", health.Ready)

	api.Post("/register", auth.Register)
	api.Post("/login", auth.Login)
	api.Post("/logout", authMW, auth.Logout)
	api.Get("/profile", authMW, auth.Profile)

	t := api.Group("/tasks", authMW)
	t.Get("/", tasks.List)
	t.Post("/", tasks.Create)
	t.Put("/:id", tasks.Update)
	t.Delete("/:id", tasks.Delete)

	app.Get("/swagger/*", swagger.HandlerDefault)
}

// ErrorHandler renders errors that escape the handlers (unknown routes,
// oversized bodies, recovered panics) in the same {"error": ...} shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
