// Package server contains the HTTP handlers for floorview's pages and JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"floorview/internal/config"
	"floorview/internal/content"
	"floorview/internal/middleware"
	"floorview/internal/models"
	"floorview/internal/observability"
	"floorview/internal/service"
	"floorview/internal/upstream"
	redispkg "floorview/pkg/redis"
	"floorview/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Forum is the read model the handlers render.
type Forum interface {
	Categories(ctx context.Context) service.CategoriesResult
	Category(ctx context.Context, id int64) service.CategoryResult
	Posts(ctx context.Context, q upstream.PostListQuery) service.PostListResult
	PostDetail(ctx context.Context, q upstream.PostDetailQuery) service.PostDetailResult
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Config    *config.Config
	Forum     Forum
	Formatter *content.Formatter
	Logger    *slog.Logger
	// Redis is optional; without it rate limiting is kept in memory.
	Redis *redis.Client
	// Registry is optional; without it a fresh registry is created.
	Registry *prometheus.Registry
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	forum          Forum
	formatter      *content.Formatter
	logger         *slog.Logger
	redis          *redis.Client
	registry       *prometheus.Registry
	promMiddleware *fiberprometheus.FiberPrometheus
	app            *fiber.App
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout(),
		upstream.WithLogger(logger),
		upstream.WithMetrics(observability.NewUpstreamMetrics(reg)),
	)
	if err != nil {
		return nil, fmt.Errorf("upstream client: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = redispkg.NewClient(cfg.RedisURL)
		if err := redispkg.Ping(context.Background(), rdb); err != nil {
			logger.Warn("redis not reachable", slog.Any("error", err), slog.Bool("fail_closed", cfg.RateLimitFailClosed))
		}
	}

	return NewServerWithDeps(Deps{
		Config:    cfg,
		Forum:     service.NewForumService(client, logger),
		Formatter: content.NewFormatter(content.WithGalleryGroup(cfg.GalleryGroup)),
		Logger:    logger,
		Redis:     rdb,
		Registry:  reg,
	})
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests.
func NewServerWithDeps(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Forum == nil {
		return nil, errors.New("forum is required")
	}
	if deps.Formatter == nil {
		deps.Formatter = content.NewFormatter(content.WithGalleryGroup(deps.Config.GalleryGroup))
	}
	if deps.Logger == nil {
		deps.Logger = observability.NopLogger()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	return &Server{
		config:         deps.Config,
		forum:          deps.Forum,
		formatter:      deps.Formatter,
		logger:         deps.Logger,
		redis:          deps.Redis,
		registry:       deps.Registry,
		promMiddleware: middleware.InitMetrics(deps.Registry, "floorview"),
	}, nil
}

// NewApp builds the Fiber app with views, middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "floorview",
		Views:        newViewEngine(s.formatter, s.config.Location()),
		ViewsLayout:  "layouts/main",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))

	// Tracing before the context middleware so the trace id reaches the logger
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Gallery images and the lightbox script live on other hosts.
	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger(s.logger))

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,HEAD,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       86400, // 24 hours
	}))

	app.Use(compress.New())

	if limit := s.config.RateLimitPerMinute; limit > 0 {
		if s.redis != nil {
			policy := middleware.FailOpen
			if s.config.RateLimitFailClosed {
				policy = middleware.FailClosed
			}
			rl := middleware.NewRateLimiter(s.redis, limit, time.Minute, s.logger).WithPolicy(policy)
			app.Use(rl.Handler("global"))
		} else {
			app.Use(limiter.New(limiter.Config{
				Max:        limit,
				Expiration: 1 * time.Minute,
				// Never rate-limit preflight requests; they should be handled by CORS.
				Next: func(c *fiber.Ctx) bool {
					return c.Method() == fiber.MethodOptions
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
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		MaxAge: 3600,
	}))

	// Pages
	app.Get("/", s.IndexPage)
	app.Get("/category/:id", s.CategoryPage)
	app.Get("/post/:id", s.PostPage)

	// JSON API
	api := app.Group("/api")
	api.Get("/categories", s.GetCategories)
	api.Get("/category/:id", s.GetCategory)
	api.Get("/posts/:id", s.GetPosts)
	api.Get("/post/:id", s.GetPost)
}

// errorHandler renders unhandled errors as an error page or JSON envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	appErr := models.NewInternalError(err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		appErr = &models.AppError{Code: fiberErrorCode(fe.Code), Message: fe.Message}
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.ErrorContext(c.UserContext(), "unhandled error", slog.Any("error", err))
	}

	if wantsJSON(c) {
		return models.RespondWithError(c, status, appErr)
	}
	return s.renderError(c, status, appErr.Message)
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return models.CodeNotFound
	case fiber.StatusBadRequest:
		return models.CodeValidation
	default:
		return models.CodeInternal
	}
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/health/")
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is only checked when configured.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := redispkg.Ping(c.UserContext(), s.redis); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"redis": redisStatus,
		},
		"upstream": s.config.UpstreamBaseURL,
		"time":     time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	s.logger.Info("server starting", slog.String("port", s.config.Port), slog.String("env", s.config.Env))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			s.logger.Error("error shutting down HTTP server", slog.Any("error", err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("error closing redis", slog.Any("error", err))
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
