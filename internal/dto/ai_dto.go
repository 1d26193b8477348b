package dto

type MedicationInfoRequest struct {
	MedicationName string `json:"medicationName"`
}

type MedicationInfoResponse struct {
	Info string `json:"info"`
}

// InteractionMedication is the subset of a medication the interaction prompt needs.
type InteractionMedication struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

type CheckInteractionsRequest struct {
	Medications []InteractionMedication `json:"medications"`
}

type CheckInteractionsResponse struct {
	Interactions string `json:"interactions"`
}
