package models

import "time"

// Medication is one entry of a user's medication list. The list is stored as a
// single JSON document, so field names follow the client's camelCase contract.
type Medication struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage"`
	Frequency    string    `json:"frequency"`
	CreatedAt    time.Time `json:"createdAt"`
	ReminderTime *string   `json:"reminderTime,omitempty"`
}

// IntakeRecord maps medication id to taken status for one user and one date.
type IntakeRecord map[string]bool
