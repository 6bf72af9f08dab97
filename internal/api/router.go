package api

import (
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"todo-service/internal/service"
)

type Services struct {
	Auth  service.AuthService
	Todos service.TodoService
	Admin service.AdminService
}

// NewApp builds the fiber app with middleware and every route mounted.
func NewApp(serviceName string, services Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(otelfiber.Middleware())
	app.Use(PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": serviceName})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authHandler := NewAuthHandler(services.Auth)
	todoHandler := NewTodoHandler(services.Todos)
	adminHandler := NewAdminHandler(services.Admin)

	requireToken := AuthMiddleware(services.Auth)

	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)
	app.Post("/logout", requireToken, authHandler.Logout)

	app.Get("/categories", requireToken, todoHandler.Categories)

	todoRoutes := app.Group("/todos", requireToken)
	todoRoutes.Get("/", todoHandler.List)
	todoRoutes.Post("/", todoHandler.Create)
	todoRoutes.Get("/search", todoHandler.Search)
	todoRoutes.Get("/status/:status", todoHandler.ByStatus)
	todoRoutes.Get("/priority/:priority", todoHandler.ByPriority)
	todoRoutes.Get("/category/:categoryId", todoHandler.ByCategory)
	todoRoutes.Get("/:id", todoHandler.Get)
	todoRoutes.Put("/:id", todoHandler.Update)
	todoRoutes.Patch("/:id", todoHandler.Update)
	todoRoutes.Delete("/:id", todoHandler.Delete)
	todoRoutes.Post("/:id/attachment-url", todoHandler.AttachmentURL)

	adminRoutes := app.Group("/admin", requireToken, AdminMiddleware())
	adminRoutes.Get("/users/:userId/todos", adminHandler.UserTodos)
	adminRoutes.Get("/users/:userId/todos/search", adminHandler.SearchUserTodos)
	adminRoutes.Get("/users/:userId/todos/status/:status", adminHandler.UserTodosByStatus)
	adminRoutes.Get("/users/:userId/todos/priority/:priority", adminHandler.UserTodosByPriority)
	adminRoutes.Get("/users/:userId/todos/category/:categoryId", adminHandler.UserTodosByCategory)

	return app
}
