// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"driftchat/internal/cache"
	"driftchat/internal/config"
	"driftchat/internal/database"
	"driftchat/internal/middleware"
	"driftchat/internal/models"
	"driftchat/internal/repository"
	"driftchat/internal/scheduler"
	"driftchat/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
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
	sched          *scheduler.Scheduler

	userRepo    repository.UserRepository
	roomRepo    repository.RoomRepository
	sessionRepo repository.SessionRepository
	postRepo    repository.PostRepository
	voteRepo    repository.VoteRepository

	roomService       *service.RoomService
	postService       *service.PostService
	reputationService *service.ReputationService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	// Injected clients must reach the cache package too, or history caching
	// silently no-ops for callers that bypass NewServer.
	cache.SetClient(redisClient)

	prom := middleware.InitMetrics("driftchat-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(db),
		roomRepo:       repository.NewRoomRepository(db),
		sessionRepo:    repository.NewSessionRepository(db),
		postRepo:       repository.NewPostRepository(db),
		voteRepo:       repository.NewVoteRepository(db),
	}

	server.roomService = service.NewRoomService(server.roomRepo, server.sessionRepo, nil)
	server.reputationService = service.NewReputationService(server.voteRepo, server.postRepo)
	server.postService = service.NewPostService(
		server.postRepo,
		server.sessionRepo,
		server.reputationService.Reputation,
		server.reputationService.VotesForPosts,
		time.Duration(cfg.CooldownBaseSeconds)*time.Second,
		cfg.MaxPostLength,
		nil,
	)

	sched, err := scheduler.New()
	if err != nil {
		return nil, fmt.Errorf("scheduler init failed: %w", err)
	}
	server.sched = sched

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and Alien ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Everything past this point requires an authenticated alien.
	protected := api.Group("", s.AuthRequired())

	chat := protected.Group("/chat")
	chat.Post("/join", middleware.RateLimit(
		s.redis, 30, time.Minute, "join"), s.JoinRoom)
	chat.Post("/heartbeat", s.Heartbeat)
	chat.Delete("/session", s.LeaveRoom)
	chat.Post("/posts", middleware.RateLimit(
		s.redis, 20, time.Minute, "create_post"), s.CreatePost)
	chat.Get("/rooms/:hash/history", s.GetRoomHistory)
	chat.Get("/rooms/:hash/neighbors", s.GetNeighbors)

	votes := protected.Group("/votes")
	votes.Post("/", middleware.RateLimit(
		s.redis, 60, time.Minute, "cast_vote"), s.CastVote)

	protected.Get("/reputation", s.GetMyReputation)

	// Manual sweep trigger; the scheduler runs the same job on an interval.
	protected.Post("/prune", s.TriggerPrune)
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
		// Redis is optional: history caching and rate limits degrade without it.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// AuthRequired returns the authentication middleware. The JWT subject is the
// caller's alien ID, an opaque client-generated identifier issued by the
// identity frontend; no account data is stored beyond it.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "driftchat-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "driftchat-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		alienID, ok := claims["sub"].(string)
		if !ok || alienID == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		// Materialize the identity row on first contact.
		if _, err := s.userRepo.FindOrCreate(c.UserContext(), alienID); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}

		c.Locals("alienID", alienID)
		ctx := context.WithValue(c.UserContext(), middleware.AlienIDKey, alienID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// StartPruneJob schedules the periodic expiry sweep and starts the scheduler.
func (s *Server) StartPruneJob() error {
	interval := time.Duration(s.config.PruneIntervalMins) * time.Minute
	err := s.sched.AddInterval("prune_expired_rooms", interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		result, err := s.roomService.Prune(ctx)
		if err != nil {
			slog.Error("prune sweep failed", "error", err)
			return
		}
		if result.Rooms > 0 {
			slog.Info("prune sweep complete",
				"rooms", result.Rooms, "posts", result.Posts, "sessions", result.Sessions)
		}
	})
	if err != nil {
		return err
	}
	s.sched.Start()
	return nil
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Driftchat API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.StartPruneJob(); err != nil {
		// The API still works without the sweep; expired rooms just linger
		// until the next successful schedule.
		slog.Error("failed to start prune job", "error", err)
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sched != nil {
		if err := s.sched.Stop(); err != nil {
			log.Printf("error stopping scheduler: %v", err)
		}
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

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
