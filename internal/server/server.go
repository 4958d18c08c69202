// Package server contains HTTP and WebSocket handlers for the deal and messaging API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "rizq/docs" // swagger docs
	"rizq/internal/bootstrap"
	"rizq/internal/cache"
	"rizq/internal/config"
	"rizq/internal/database"
	"rizq/internal/featureflags"
	"rizq/internal/middleware"
	"rizq/internal/models"
	"rizq/internal/notifications"
	"rizq/internal/repository"
	"rizq/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var errTicketStoreUnavailable = errors.New("ticket store unavailable")

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	verifier       *middleware.TokenVerifier
	featureFlags   *featureflags.Manager
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	dispatcher     *notifications.Dispatcher
	feed           notifications.Feed
	profiles       *service.ProfileDirectory
	conversations  *service.ConversationService
	deals          *service.DealService
	inbox          *service.InboxWatcher
}

// NewServer connects to the database and Redis and builds a Server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis is optional; without it events stay on this instance.
	db, rdb, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		ApplySchema: true,
		SeedDemo:    cfg.SeedDemo,
	})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	timeout := repository.WithTimeout(cfg.StoreTimeout())
	policy := service.RetryPolicy{
		MaxTries: uint(cfg.StoreRetryMaxTries),
		Initial:  cfg.StoreRetryInitial(),
	}
	if policy.MaxTries == 0 {
		policy = service.DefaultRetryPolicy()
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("rizq-api"),
		verifier:       middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		hub:            notifications.NewHub(),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.feed = notifications.NewRedisFeed(redisClient)
	} else {
		s.feed = notifications.NewLocalFeed()
	}
	s.dispatcher = notifications.NewDispatcher(s.notifier, s.hub)

	s.profiles = service.NewProfileDirectory(
		repository.NewProfileRepository(db, timeout), redisClient, cfg.ConversationCacheTTL(), policy)
	s.conversations = service.NewConversationService(
		repository.NewMessageRepository(db, timeout),
		s.profiles,
		service.ConversationOptions{
			FanoutLimit: cfg.ConversationFanoutLimit,
			Retry:       policy,
			Feed:        s.feed,
			Users:       s.dispatcher,
		},
	)
	s.deals = service.NewDealService(
		repository.NewDealRepository(db, timeout),
		repository.NewItemRepository(db, timeout),
		s.profiles,
		s.conversations,
		service.DealOptions{
			Flags: s.featureFlags,
			Retry: policy,
			Feed:  s.feed,
			Users: s.dispatcher,
		},
	)
	s.inbox = service.NewInboxWatcher(s.feed, s.conversations, service.DefaultInboxDebounce)

	return s, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Rizq Deal API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware installs the global middleware stack.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before ContextMiddleware so log lines carry the trace id.
	app.Use(middleware.TracingMiddleware())
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
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Rizq Deal Engine Metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Websocket routes are registered before the protected group so its
	// bearer-only middleware never sees ticket upgrades.
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	api.Get("/ws/inbox", s.WSAuthRequired(), s.InboxWebsocket())

	protected := api.Group("", s.AuthRequired())

	deals := protected.Group("/deals")
	deals.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_deal"), s.CreateDeal)
	deals.Get("/", s.ListDeals)
	// Specific /:id/:action routes before generic /:id
	deals.Patch("/:id/status", s.UpdateDealStatus)
	deals.Post("/:id/accept", s.transitionDeal(models.DealStatusActive))
	deals.Post("/:id/reject", s.transitionDeal(models.DealStatusRejected))
	deals.Post("/:id/complete", s.transitionDeal(models.DealStatusCompleted))
	deals.Post("/:id/reply", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.ReplyToDeal)
	deals.Get("/:id", s.GetDeal)

	conversations := protected.Group("/conversations")
	conversations.Get("/", s.ListConversations)
	conversations.Get("/:userId/messages", s.GetThread)
	conversations.Post("/:userId/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	conversations.Post("/:userId/read", s.MarkConversationRead)
	conversations.Post("/:userId/open", s.OpenConversation)

	messages := protected.Group("/messages")
	messages.Get("/unread-count", s.UnreadCount)
	messages.Post("/:id/read", s.MarkMessageRead)

	protected.Get("/items/mine", s.ListMyItems)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports 503 when the database or a configured Redis is unreachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
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

// AuthRequired accepts a bearer access token.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.verifier)
}

// WSAuthRequired authenticates websocket upgrades with a single-use ticket
// from IssueWSTicket. Browsers cannot set headers on upgrades, and access
// tokens are never accepted in the query string.
func (s *Server) WSAuthRequired() fiber.Handler {
	bearer := s.AuthRequired()
	return func(c *fiber.Ctx) error {
		ticket := strings.TrimSpace(c.Query("ticket"))
		if ticket == "" {
			if _, ok := middleware.BearerToken(c); ok {
				return bearer(c)
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("WebSocket ticket required"))
		}
		if s.redis == nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewTransientError(errTicketStoreUnavailable))
		}

		// GETDEL makes the ticket single-use even under concurrent upgrades.
		raw, err := s.redis.GetDel(c.UserContext(), cache.WSTicketKey(ticket)).Result()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}
		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
		}

		c.Locals("userID", uint(userID))
		c.Locals("wsTicket", ticket)
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID)))
		return c.Next()
	}
}

// Start builds the app, wires the inbox hub to Redis and blocks serving HTTP.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	middleware.Logger.Info("server starting",
		slog.String("port", s.config.Port),
		slog.Any("feature_flags", s.featureFlags.Names()),
	)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub",
			slog.String("hub", s.hub.Name()),
			slog.String("error", err.Error()),
		)
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

	middleware.Logger.Info("server shutdown complete")
	return nil
}
