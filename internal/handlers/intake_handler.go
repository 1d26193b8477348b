package handlers

import (
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type IntakeHandler struct {
	intakeService *services.IntakeService
}

func NewIntakeHandler(intakeService *services.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

func (h *IntakeHandler) MarkTaken(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.MarkTakenRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.intakeService.SetTaken(c.UserContext(), userID, req.MedicationID, req.Date, req.Taken); err != nil {
		return respondError(c, err, "mark_taken", "Failed to update medication status")
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *IntakeHandler) GetTaken(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	rec, err := h.intakeService.Get(c.UserContext(), userID, c.Params("date"))
	if err != nil {
		return respondError(c, err, "get_taken", "Failed to fetch taken medications")
	}
	return c.JSON(dto.TakenResponse{TakenMeds: rec})
}
