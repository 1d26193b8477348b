package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/models"
)

type CreateMedicationRequest struct {
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage"`
	Frequency    Frequency `json:"frequency"`
	ReminderTime *string   `json:"reminderTime,omitempty"`
}

// Frequency is the times-per-day value. Clients send it as a string ("2") or
// a number (2). Zero and null read as empty so the required check fires.
type Frequency string

func (f *Frequency) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Frequency(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("frequency must be a string or a number: %w", err)
	}
	if n == 0 {
		*f = ""
		return nil
	}
	*f = Frequency(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// UpdateReminderRequest clears the reminder when ReminderTime is absent or null.
type UpdateReminderRequest struct {
	ReminderTime *string `json:"reminderTime"`
}

type MedicationListResponse struct {
	Medications []models.Medication `json:"medications"`
}

type MedicationResponse struct {
	Success    bool              `json:"success"`
	Medication models.Medication `json:"medication"`
}

type MarkTakenRequest struct {
	MedicationID string `json:"medicationId"`
	Date         string `json:"date"`
	Taken        bool   `json:"taken"`
}

type TakenResponse struct {
	TakenMeds models.IntakeRecord `json:"takenMeds"`
}

type ConditionRequest struct {
	Condition string `json:"condition"`
}

type ConditionListResponse struct {
	Success    bool     `json:"success,omitempty"`
	Conditions []string `json:"conditions"`
}
