package handlers

import (
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AIHandler struct {
	aiService         *services.AIService
	medicationService *services.MedicationService
}

func NewAIHandler(aiService *services.AIService, medicationService *services.MedicationService) *AIHandler {
	return &AIHandler{aiService: aiService, medicationService: medicationService}
}

func (h *AIHandler) MedicationInfo(c *fiber.Ctx) error {
	var req dto.MedicationInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	info, err := h.aiService.MedicationInfo(c.UserContext(), req.MedicationName)
	if err != nil {
		return respondError(c, err, "medication_info", "Failed to get medication information from AI")
	}
	return c.JSON(dto.MedicationInfoResponse{Info: info})
}

// CheckInteractions uses the caller's stored medications when the body omits them.
func (h *AIHandler) CheckInteractions(c *fiber.Ctx) error {
	var req dto.CheckInteractionsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}

	meds := req.Medications
	if meds == nil {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		stored, err := h.medicationService.List(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err, "check_interactions", "Failed to check medication interactions")
		}
		for _, m := range stored {
			meds = append(meds, dto.InteractionMedication{Name: m.Name, Dosage: m.Dosage})
		}
	}

	text, err := h.aiService.CheckInteractions(c.UserContext(), meds)
	if err != nil {
		return respondError(c, err, "check_interactions", "Failed to check medication interactions")
	}
	return c.JSON(dto.CheckInteractionsResponse{Interactions: text})
}
