// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"bridgefeed/internal/archive"
	"bridgefeed/internal/bootstrap"
	"bridgefeed/internal/config"
	"bridgefeed/internal/featureflags"
	"bridgefeed/internal/middleware"
	"bridgefeed/internal/models"
	"bridgefeed/internal/notifications"
	"bridgefeed/internal/observability"
	"bridgefeed/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	runtime        *bootstrap.Runtime
	svc            *service.EngagementService
	featureFlags   *featureflags.Manager
	notifier       *notifications.Notifier
	scheduler      *archive.Scheduler
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	flags := bootstrap.NewFlags(cfg)
	svc := bootstrap.NewService(cfg, rt, flags)

	s, err := NewServerWithDeps(cfg, rt, svc, flags)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	s.scheduler, err = bootstrap.NewArchiveScheduler(cfg, svc)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("archive schedule: %w", err)
	}
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when the caller owns the runtime.
func NewServerWithDeps(cfg *config.Config, rt *bootstrap.Runtime, svc *service.EngagementService, flags *featureflags.Manager) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("engagement service is required")
	}
	if rt == nil {
		rt = &bootstrap.Runtime{}
	}
	if flags == nil {
		flags = bootstrap.NewFlags(cfg)
	}

	s := &Server{
		config:         cfg,
		runtime:        rt,
		svc:            svc,
		featureFlags:   flags,
		promMiddleware: middleware.InitMetrics("bridgefeed-api"),
	}
	if rt.Redis != nil {
		s.notifier = notifications.NewNotifier(rt.Redis)
	}
	return s, nil
}

// NewApp returns a fiber app with the error handler, middleware and routes
// installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "bridgefeed API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
			}
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// after requestid so the id reaches the request context
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, " + middleware.CorrelationHeader,
		ExposeHeaders: middleware.CorrelationHeader + ", " + middleware.TraceHeader,
		MaxAge:        86400,
	}))

	// Global rate limiting (100 requests per minute per IP), off outside production
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return !s.config.IsProduction() || c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)

	users := api.Group("/users")
	users.Get("/", s.ListUsers)
	users.Post("/", s.CreateUser)
	users.Get("/:id", s.GetUser)

	posts := api.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.CreatePost)
	posts.Get("/:id/comments", s.ListComments)

	api.Post("/comments", s.CreateComment)
	api.Post("/reactions", s.RecordReaction)
	api.Get("/stats", s.GetStats)

	demo := api.Group("/demo")
	demo.Post("/generate", s.GenerateDemo)
	demo.Post("/reset", s.ResetDemo)

	api.Post("/archive", s.featureRequired(featureflags.ArchiveEndpoint), s.ArchiveSnapshot)
	api.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports the optional dependencies. The in-memory store is
// always ready; a configured but failing Redis or archive makes the service
// unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if s.runtime.DB != nil {
		dbStatus = "healthy"
		if sqlDB, err := s.runtime.DB.DB(); err != nil {
			dbStatus = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	}

	redisStatus := "disabled"
	if s.runtime.Redis != nil {
		redisStatus = "healthy"
		if err := s.runtime.Redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "bridgefeed",
		"status":  overall,
		"checks": fiber.Map{
			"store":   "healthy",
			"archive": dbStatus,
			"redis":   redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts background jobs and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.scheduler != nil {
		s.scheduler.Start()
		observability.Logger.Info("archive scheduler started",
			"schedule", s.config.ArchiveSchedule, "next", s.scheduler.Next().Next)
	}

	if s.notifier != nil {
		if err := s.notifier.StartSubscriber(s.shutdownCtx, logEvent); err != nil {
			observability.Logger.Warn("event subscriber not started", "error", err)
		}
	}

	observability.Logger.Info("server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

func logEvent(channel, payload string) {
	observability.Logger.Debug("event received", "channel", channel, "payload", payload)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	// waits for a running archive job
	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	if err := s.runtime.Close(); err != nil {
		observability.Logger.Error("error closing connections", "error", err)
	}

	observability.Logger.Info("server shutdown complete")
	return nil
}
