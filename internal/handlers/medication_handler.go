package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type MedicationHandler struct {
	medicationService *services.MedicationService
}

func NewMedicationHandler(medicationService *services.MedicationService) *MedicationHandler {
	return &MedicationHandler{medicationService: medicationService}
}

func (h *MedicationHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	meds, err := h.medicationService.List(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "list_medications", "Failed to fetch medications")
	}
	return c.JSON(dto.MedicationListResponse{Medications: meds})
}

func (h *MedicationHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateMedicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	med, err := h.medicationService.Add(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err, "add_medication", "Failed to add medication")
	}
	return c.JSON(dto.MedicationResponse{Success: true, Medication: *med})
}

func (h *MedicationHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if err := h.medicationService.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err, "delete_medication", "Failed to delete medication")
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *MedicationHandler) UpdateReminder(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateReminderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}

	med, err := h.medicationService.UpdateReminder(c.UserContext(), userID, c.Params("id"), req.ReminderTime)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Medication not found")
		}
		return respondError(c, err, "update_reminder", "Failed to update reminder")
	}
	return c.JSON(dto.MedicationResponse{Success: true, Medication: *med})
}
