package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"driftchat/internal/cache"
	"driftchat/internal/config"
	"driftchat/internal/database"
	"driftchat/internal/models"
	"driftchat/internal/repository"
	"driftchat/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestServer builds a Server on an in-memory database. Prometheus
// middleware is left nil so repeated test setups do not re-register
// collectors.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		Port:                "0",
		JWTSecret:           "test-secret",
		CooldownBaseSeconds: 300,
		MaxPostLength:       280,
		PruneIntervalMins:   5,
	}

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		roomRepo:    repository.NewRoomRepository(db),
		sessionRepo: repository.NewSessionRepository(db),
		postRepo:    repository.NewPostRepository(db),
		voteRepo:    repository.NewVoteRepository(db),
	}
	s.roomService = service.NewRoomService(s.roomRepo, s.sessionRepo, nil)
	s.reputationService = service.NewReputationService(s.voteRepo, s.postRepo)
	s.postService = service.NewPostService(
		s.postRepo,
		s.sessionRepo,
		s.reputationService.Reputation,
		s.reputationService.VotesForPosts,
		time.Duration(cfg.CooldownBaseSeconds)*time.Second,
		cfg.MaxPostLength,
		nil,
	)
	return s
}

// testApp wires the chat routes behind a middleware that injects the given
// alien ID, standing in for AuthRequired.
func testApp(s *Server, alienID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("alienID", alienID)
		return c.Next()
	})

	app.Post("/api/chat/join", s.JoinRoom)
	app.Post("/api/chat/heartbeat", s.Heartbeat)
	app.Delete("/api/chat/session", s.LeaveRoom)
	app.Post("/api/chat/posts", s.CreatePost)
	app.Get("/api/chat/rooms/:hash/history", s.GetRoomHistory)
	app.Get("/api/chat/rooms/:hash/neighbors", s.GetNeighbors)
	app.Post("/api/prune", s.TriggerPrune)
	app.Post("/api/votes", s.CastVote)
	app.Get("/api/reputation", s.GetMyReputation)

	return app
}

func TestNewServerWithDepsWiresCacheClient(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	cfg := &config.Config{
		Port:                "0",
		JWTSecret:           "test-secret",
		CooldownBaseSeconds: 300,
		MaxPostLength:       280,
		PruneIntervalMins:   5,
	}
	if _, err := NewServerWithDeps(cfg, db, rdb); err != nil {
		t.Fatalf("NewServerWithDeps: %v", err)
	}

	if cache.GetClient() != rdb {
		t.Fatal("expected the injected redis client to back the cache package")
	}
}

func TestRespondServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", models.NewValidationError("bad"), http.StatusBadRequest},
		{"unauthorized", models.NewUnauthorizedError("no"), http.StatusUnauthorized},
		{"not member", models.NewNotMemberError("join first"), http.StatusForbidden},
		{"not found", models.NewNotFoundError("Room", "x"), http.StatusNotFound},
		{"roam guard", models.NewRoamGuardError(120), http.StatusTooManyRequests},
		{"cooldown", models.NewCooldownError(30), http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondServiceError(c, tc.err)
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestRespondServiceErrorRetryAfterHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondServiceError(c, models.NewCooldownError(42))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if got := resp.Header.Get("Retry-After"); got != "42" {
		t.Fatalf("expected Retry-After 42, got %q", got)
	}
}
