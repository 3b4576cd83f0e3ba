package server

import (
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"fidesia-be/internal/bootstrap"
	"fidesia-be/internal/config"
	"fidesia-be/internal/pkg/serverutils"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    2 * 1024 * 1024, // questions and history only, no uploads
		ErrorHandler: serverutils.NewErrorHandler(container.Logger),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Session-Id",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, X-Session-Id, X-Conversation-Id",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	// Writes (ask, save, rate) are capped tighter than reads.
	limitReached := func(ctx *fiber.Ctx) error {
		return serverutils.ErrorResponse(ctx, fiber.StatusTooManyRequests,
			"Trop de requêtes, veuillez patienter un instant")
	}
	app.Use("/api", limiter.New(limiter.Config{
		Max:          30,
		Expiration:   time.Minute,
		LimitReached: limitReached,
		Next: func(ctx *fiber.Ctx) bool {
			return ctx.Method() == fiber.MethodGet
		},
	}))
	app.Use("/api", limiter.New(limiter.Config{
		Max:          60,
		Expiration:   time.Minute,
		LimitReached: limitReached,
		Next: func(ctx *fiber.Ctx) bool {
			return ctx.Method() != fiber.MethodGet
		},
	}))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.HealthController.RegisterRoutes(api)
	c.AuthController.RegisterRoutes(api, c.JwtMiddleware)
	c.AskController.RegisterRoutes(api, c.JwtMiddleware)
	c.ConversationController.RegisterRoutes(api, c.JwtMiddleware)
	c.CorpusController.RegisterRoutes(api, c.JwtMiddleware)
	c.SaintController.RegisterRoutes(api)
	c.AdminController.RegisterRoutes(api, c.JwtMiddleware)
}
