package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/store"
)

const dateLayout = "2006-01-02"

type IntakeService struct {
	store store.Store
}

func NewIntakeService(s store.Store) *IntakeService {
	return &IntakeService{store: s}
}

func (s *IntakeService) Get(ctx context.Context, userID, date string) (models.IntakeRecord, error) {
	date, err := validateDate(date)
	if err != nil {
		return nil, err
	}

	rec, _, err := store.GetJSON[models.IntakeRecord](ctx, s.store, store.TakenKey(userID, date))
	if err != nil {
		return nil, fmt.Errorf("get intake: %w", err)
	}
	if rec == nil {
		rec = models.IntakeRecord{}
	}
	return rec, nil
}

func (s *IntakeService) SetTaken(ctx context.Context, userID, medicationID, date string, taken bool) error {
	medicationID = strings.TrimSpace(medicationID)
	date = strings.TrimSpace(date)
	if medicationID == "" || date == "" {
		return invalid("Medication ID and date are required")
	}
	date, err := validateDate(date)
	if err != nil {
		return err
	}

	_, err = store.UpdateJSON(ctx, s.store, store.TakenKey(userID, date), func(rec *models.IntakeRecord) error {
		if *rec == nil {
			*rec = models.IntakeRecord{}
		}
		(*rec)[medicationID] = taken
		return nil
	})
	if err != nil {
		return fmt.Errorf("set taken: %w", err)
	}
	return nil
}

// validateDate keeps date-scoped keys well formed.
func validateDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", invalid("Date must be in YYYY-MM-DD format")
	}
	return date, nil
}
