package handlers

import (
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ConditionHandler struct {
	conditionService *services.ConditionService
}

func NewConditionHandler(conditionService *services.ConditionService) *ConditionHandler {
	return &ConditionHandler{conditionService: conditionService}
}

func (h *ConditionHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	list, err := h.conditionService.List(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "list_conditions", "Failed to fetch medical conditions")
	}
	return c.JSON(dto.ConditionListResponse{Conditions: list})
}

func (h *ConditionHandler) Add(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ConditionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	list, err := h.conditionService.Add(c.UserContext(), userID, req.Condition)
	if err != nil {
		return respondError(c, err, "add_condition", "Failed to add medical condition")
	}
	return c.JSON(dto.ConditionListResponse{Success: true, Conditions: list})
}

func (h *ConditionHandler) Remove(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.ConditionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	list, err := h.conditionService.Remove(c.UserContext(), userID, req.Condition)
	if err != nil {
		return respondError(c, err, "remove_condition", "Failed to remove medical condition")
	}
	return c.JSON(dto.ConditionListResponse{Success: true, Conditions: list})
}
