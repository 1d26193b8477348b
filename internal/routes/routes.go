package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Medication *handlers.MedicationHandler
	Intake     *handlers.IntakeHandler
	Condition  *handlers.ConditionHandler
	AI         *handlers.AIHandler
	Health     *handlers.HealthHandler
}

// Setup mounts every route. authGate resolves the bearer token; aiLimiter
// throttles the AI routes per user.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	h Handlers,
	authGate fiber.Handler,
	aiLimiter fiber.Handler,
	m *metrics.Metrics,
) {
	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	api := app.Group(cfg.RoutePrefix)

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Account creation and sign-in: 10 req/min per IP
	authLimit := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	api.Post("/signup", authLimit, h.Auth.Signup)
	api.Post("/login", authLimit, h.Auth.Login)

	api.Post("/logout", authGate, h.Auth.Logout)
	api.Get("/me", authGate, h.Auth.Me)

	api.Get("/medications", authGate, h.Medication.List)
	api.Post("/medications", authGate, h.Medication.Create)
	api.Delete("/medications/:id", authGate, h.Medication.Delete)
	api.Patch("/medications/:id/reminder", authGate, h.Medication.UpdateReminder)

	api.Post("/mark-taken", authGate, h.Intake.MarkTaken)
	api.Get("/taken/:date", authGate, h.Intake.GetTaken)

	api.Get("/medical-conditions", authGate, h.Condition.List)
	api.Post("/medical-conditions", authGate, h.Condition.Add)
	api.Delete("/medical-conditions", authGate, h.Condition.Remove)

	api.Post("/medication-info", authGate, aiLimiter, h.AI.MedicationInfo)
	api.Post("/check-interactions", authGate, aiLimiter, h.AI.CheckInteractions)
}
