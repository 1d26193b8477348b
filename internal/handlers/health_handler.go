package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	store     store.Store
	aiService *services.AIService
}

func NewHealthHandler(s store.Store, aiService *services.AIService) *HealthHandler {
	return &HealthHandler{store: s, aiService: aiService}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	storeStatus := "ok"
	if err := h.store.Ping(c.UserContext()); err != nil {
		status = "degraded"
		storeStatus = "unhealthy: " + err.Error()
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:       status,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Store:        storeStatus,
		AIConfigured: h.aiService.Configured(),
	})
}
