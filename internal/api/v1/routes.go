package v1

import (
	"time"

	"kanban-board/internal/api/v1/handlers"
	"kanban-board/internal/config"
	"kanban-board/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// NewApp membuat app fiber lengkap dengan middleware dan semua route.
func NewApp(deps *config.Dependencies) *fiber.App {
	cfg := deps.Config
	app := fiber.New(fiber.Config{
		AppName:      "kanban-board",
		ErrorHandler: middleware.FiberErrorHandler(deps.Log),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(middleware.ErrorHandler(deps.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: 1 * time.Minute,
		}))
	}
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	RegisterRoutes(app, deps)
	return app
}

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	h := handlers.New(deps)
	guard := middleware.UseToken(deps.Tokens, deps.Log)

	app.Get("/health", h.Health)

	// Auth
	app.Post("/signup", h.Signup)
	app.Post("/login", h.Login)

	// Board
	boardRoutes := app.Group("/boards", guard)
	boardRoutes.Get("/", h.ListBoards)
	boardRoutes.Post("/", h.CreateBoard)
	boardRoutes.Put("/:id", h.UpdateBoard)
	boardRoutes.Delete("/:id", h.DeleteBoard)

	// Task, selalu di bawah board
	taskRoutes := boardRoutes.Group("/:boardId/tasks")
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Put("/:taskId", h.UpdateTask)
	taskRoutes.Delete("/:taskId", h.DeleteTask)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not Found"})
	})
}
