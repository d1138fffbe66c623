// Package server contains the HTTP handlers for the content-review API.
package server

import (
	"context"
	"log"
	"time"

	"kritika/internal/auth"
	"kritika/internal/config"
	"kritika/internal/database"
	"kritika/internal/middleware"
	"kritika/internal/models"
	"kritika/internal/policy"
	"kritika/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config     *config.Config
	db         *gorm.DB
	redis      *redis.Client
	users      repository.UserRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	titles     repository.TitleRepository
	reviews    repository.ReviewRepository
	comments   repository.CommentRepository
	mailer     auth.Mailer
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without rate limiting)", err)
		redisClient = nil
	}

	var mailer auth.Mailer
	if cfg.SMTPAddr != "" {
		mailer = &auth.SMTPMailer{
			Addr:     cfg.SMTPAddr,
			From:     cfg.SMTPFrom,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}
	} else {
		mailer = &auth.LogMailer{Logger: middleware.Logger}
	}

	return NewServerWithDeps(cfg, db, redisClient, mailer), nil
}

// NewServerWithDeps builds a server around existing connections. Used by
// NewServer and by tests that bring their own store and mailer.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mailer auth.Mailer) *Server {
	return &Server{
		config:     cfg,
		db:         db,
		redis:      redisClient,
		users:      repository.NewUserRepository(db),
		categories: repository.NewCategoryRepository(db),
		genres:     repository.NewGenreRepository(db),
		titles:     repository.NewTitleRepository(db),
		reviews:    repository.NewReviewRepository(db),
		comments:   repository.NewCommentRepository(db),
		mailer:     mailer,
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Bearer token resolution; anonymous requests pass through.
	api.Use(middleware.Authenticate(s.config.JWTSecret, s.users))

	// Health check
	api.Get("/", s.HealthCheck)

	// Metrics page
	api.Get("/metrics", monitor.New(monitor.Config{
		Title: "Kritika API Metrics",
	}))

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/token", middleware.RateLimit(s.redis, 10, 5*time.Minute, "token"), s.Token)

	// User routes; /me must be registered before the generic /:username
	users := api.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Patch("/me", s.UpdateMyProfile)
	users.Get("/", s.ListUsers)
	users.Post("/", s.CreateUser)
	users.Get("/:username", s.GetUser)
	users.Patch("/:username", s.UpdateUser)
	users.Delete("/:username", s.DeleteUser)

	// Catalog routes
	categories := api.Group("/categories")
	categories.Get("/", s.ListCategories)
	categories.Post("/", s.CreateCategory)
	categories.Delete("/:slug", s.DeleteCategory)

	genres := api.Group("/genres")
	genres.Get("/", s.ListGenres)
	genres.Post("/", s.CreateGenre)
	genres.Delete("/:slug", s.DeleteGenre)

	// Nested review/comment routes before the generic /titles/:id routes
	comments := api.Group("/titles/:title_id/reviews/:review_id/comments")
	comments.Get("/", s.ListComments)
	comments.Post("/", s.CreateComment)
	comments.Get("/:id", s.GetComment)
	comments.Patch("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	reviews := api.Group("/titles/:title_id/reviews")
	reviews.Get("/", s.ListReviews)
	reviews.Post("/", s.CreateReview)
	reviews.Get("/:id", s.GetReview)
	reviews.Patch("/:id", s.UpdateReview)
	reviews.Delete("/:id", s.DeleteReview)

	titles := api.Group("/titles")
	titles.Get("/", s.ListTitles)
	titles.Post("/", s.CreateTitle)
	titles.Get("/:id", s.GetTitle)
	titles.Patch("/:id", s.UpdateTitle)
	titles.Delete("/:id", s.DeleteTitle)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Kritika",
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App assembles the fiber application: error handler, middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Kritika API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

// authorize evaluates rule for the current request, returning the policy
// denial (unauthorized or forbidden) or nil. Handlers respond with
// models.RespondAppError on denial.
func (s *Server) authorize(c *fiber.Ctx, rule policy.Rule, authorID uint) error {
	in := policy.Input{
		Actor:    middleware.Actor(c),
		Method:   c.Method(),
		AuthorID: authorID,
	}
	return policy.Check(rule, in)
}
