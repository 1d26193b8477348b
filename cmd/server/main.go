package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.SupabaseURL == "" {
		slog.Error("SUPABASE_URL environment variable is required")
		os.Exit(1)
	}
	if cfg.StoreDriver == config.StorePostgres && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required for the postgres store")
		os.Exit(1)
	}
	if cfg.StoreDriver == config.StoreRedis && cfg.RedisURL == "" {
		slog.Error("REDIS_URL environment variable is required for the redis store")
		os.Exit(1)
	}
	if !cfg.AIConfigured() {
		slog.Warn("no AI provider key configured; AI routes will answer 503")
	}

	// Database (postgres store and/or system logs)
	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})
	if cfg.DatabaseEnabled() {
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.WithDatabase(database.DB)
		logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)
	}

	// Record store
	var recordStore store.Store
	switch cfg.StoreDriver {
	case config.StorePostgres:
		recordStore = store.NewPostgresStore(database.DB)
	case config.StoreRedis:
		redisStore, err := store.NewRedisStoreFromURL(cfg.RedisURL, cfg.StoreKeyPrefix)
		if err != nil {
			slog.Error("redis store init failed", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		recordStore = redisStore
	case config.StoreMemory:
		slog.Warn("using in-memory record store; data is lost on restart")
		recordStore = store.NewMemoryStore()
	default:
		slog.Error("unknown STORE_DRIVER", "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	slog.Info("record store ready", "driver", cfg.StoreDriver)

	m := metrics.New()

	// Services
	authService := services.NewAuthService(cfg)
	medicationService := services.NewMedicationService(recordStore)
	intakeService := services.NewIntakeService(recordStore)
	conditionService := services.NewConditionService(recordStore)
	aiService := services.NewAIService(cfg, m)

	// Handlers
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Medication: handlers.NewMedicationHandler(medicationService),
		Intake:     handlers.NewIntakeHandler(intakeService),
		Condition:  handlers.NewConditionHandler(conditionService),
		AI:         handlers.NewAIHandler(aiService, medicationService),
		Health:     handlers.NewHealthHandler(recordStore, aiService),
	}

	aiLimiter := middleware.NewUserRateLimiter(cfg.AIRatePerMinute, cfg.AIRateBurst)
	limiterDone := make(chan struct{})
	aiLimiter.StartCleanup(10*time.Minute, limiterDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.Metrics(m))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Cache-Control", "no-store")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, h, middleware.SupabaseAuth(cfg, authService), aiLimiter.Handler(), m)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "prefix", cfg.RoutePrefix)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	close(limiterDone)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)
	database.Close()

	slog.Info("server stopped")
}
