// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "knowhere/docs" // swagger docs
	"knowhere/internal/config"
	"knowhere/internal/featureflags"
	"knowhere/internal/middleware"
	"knowhere/internal/models"
	"knowhere/internal/notifications"
	"knowhere/internal/repository"
	"knowhere/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	verifier       *middleware.TokenVerifier
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	articles *service.ArticleService
	profiles *service.ProfileService
	follows  *service.FollowService
	claps    *service.ClapService
	comments *service.CommentService
	saved    *service.SavedArticleService
	stats    *service.StatsService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client disables caching, rate limiting and cross-instance
// event fan-out; events are then delivered to this process's hub only.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	articleRepo := repository.NewArticleRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	followRepo := repository.NewFollowRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("knowhere-api"),
		verifier:       middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		hub:            notifications.NewHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),

		articles: service.NewArticleService(articleRepo),
		profiles: service.NewProfileService(profileRepo),
		follows:  service.NewFollowService(followRepo),
		claps:    service.NewClapService(repository.NewClapRepository(db)),
		comments: service.NewCommentService(repository.NewCommentRepository(db)),
		saved:    service.NewSavedArticleService(repository.NewSavedArticleRepository(db), articleRepo),
		stats:    service.NewStatsService(articleRepo, profileRepo, followRepo),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())

	return s, nil
}

// NewApp builds the fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Knowhere API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	requireAuth := middleware.AuthRequired(s.verifier, s.redis)
	optionalAuth := middleware.OptionalAuth(s.verifier)
	// Writes need the caller's profile row to exist.
	writer := []fiber.Handler{requireAuth, s.EnsureCallerProfile()}

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Get("/swagger/*", swagger.HandlerDefault)

	articles := api.Group("/articles")
	articles.Get("/", optionalAuth, s.ListArticles)
	// Specific paths before the generic /:slug route.
	articles.Get("/search", s.SearchArticles)
	articles.Get("/tag/:tag", s.ListArticlesByTag)
	articles.Post("/", append(writer, s.CreateArticle)...)
	articles.Post("/:id/clap", append(writer,
		middleware.RateLimit(s.redis, s.config.ClapRateLimit, time.Minute, "clap"), s.ClapArticle)...)
	articles.Get("/:id/clap", requireAuth, s.GetMyClap)
	articles.Get("/:id/comments", optionalAuth, s.ListComments)
	articles.Post("/:id/comments", append(writer,
		middleware.RateLimit(s.redis, s.config.CommentRateLimit, time.Minute, "comment"), s.CreateComment)...)
	articles.Post("/:id/save", append(writer, s.SaveArticle)...)
	articles.Delete("/:id/save", requireAuth, s.UnsaveArticle)
	articles.Patch("/:id", requireAuth, s.UpdateArticle)
	articles.Delete("/:id", requireAuth, s.DeleteArticle)
	articles.Get("/:slug", optionalAuth, s.GetArticle)

	me := api.Group("/me")
	me.Get("/", requireAuth, s.GetMyProfile)
	me.Post("/", requireAuth, s.EnsureMyProfile)
	me.Patch("/", requireAuth, s.UpdateMyProfile)
	me.Get("/articles", requireAuth, s.GetMyArticles)
	me.Get("/saved", requireAuth, s.GetMySavedArticles)
	me.Get("/stats", requireAuth, s.GetMyStats)
	me.Get("/suggestions", requireAuth, s.GetSuggestedProfiles)
	me.Get("/feature-flags", requireAuth, s.GetFeatureFlags)

	profiles := api.Group("/profiles")
	profiles.Get("/:username/articles", s.GetProfileArticles)
	profiles.Get("/:username/followers", s.GetFollowers)
	profiles.Get("/:username/following", s.GetFollowing)
	profiles.Get("/:username/follow", requireAuth, s.GetFollowStatus)
	profiles.Post("/:username/follow", append(writer, s.FollowProfile)...)
	profiles.Delete("/:username/follow", requireAuth, s.UnfollowProfile)
	profiles.Get("/:username", s.GetProfile)

	api.Get("/ws/engagement", optionalAuth, s.EngagementStreamHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional: caching and fan-out degrade, reads keep working.
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the engagement hub to Redis and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()

	if s.notifier != nil && s.featureFlags.EnabledGlobally(featureflags.LiveEngagement) {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Warn("engagement stream wiring failed", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the Redis subscriber before closing the client.
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down engagement hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
