package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/store"
	"github.com/google/uuid"
)

var errMedicationNotFound = fmt.Errorf("medication %w", ErrNotFound)

type MedicationService struct {
	store store.Store
	now   func() time.Time
	newID func() string
}

func NewMedicationService(s store.Store) *MedicationService {
	return &MedicationService{
		store: s,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

func (s *MedicationService) List(ctx context.Context, userID string) ([]models.Medication, error) {
	meds, _, err := store.GetJSON[[]models.Medication](ctx, s.store, store.MedicationsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	if meds == nil {
		meds = []models.Medication{}
	}
	return meds, nil
}

func (s *MedicationService) Add(ctx context.Context, userID string, req *dto.CreateMedicationRequest) (*models.Medication, error) {
	name := strings.TrimSpace(req.Name)
	dosage := strings.TrimSpace(req.Dosage)
	frequency := strings.TrimSpace(string(req.Frequency))
	if name == "" || dosage == "" || frequency == "" {
		return nil, invalid("Name, dosage, and frequency are required")
	}

	reminder, err := normalizeReminder(req.ReminderTime)
	if err != nil {
		return nil, err
	}

	med := models.Medication{
		ID:           s.newID(),
		Name:         name,
		Dosage:       dosage,
		Frequency:    frequency,
		CreatedAt:    s.now().UTC(),
		ReminderTime: reminder,
	}

	_, err = store.UpdateJSON(ctx, s.store, store.MedicationsKey(userID), func(meds *[]models.Medication) error {
		*meds = append(*meds, med)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add medication: %w", err)
	}
	return &med, nil
}

// Delete removes the medication with the given id. An unknown id is not an error.
func (s *MedicationService) Delete(ctx context.Context, userID, id string) error {
	_, err := store.UpdateJSON(ctx, s.store, store.MedicationsKey(userID), func(meds *[]models.Medication) error {
		kept := make([]models.Medication, 0, len(*meds))
		for _, m := range *meds {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		*meds = kept
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	return nil
}

// UpdateReminder sets the reminder time, or clears it when reminderTime is nil or empty.
func (s *MedicationService) UpdateReminder(ctx context.Context, userID, id string, reminderTime *string) (*models.Medication, error) {
	reminder, err := normalizeReminder(reminderTime)
	if err != nil {
		return nil, err
	}

	var updated models.Medication
	_, err = store.UpdateJSON(ctx, s.store, store.MedicationsKey(userID), func(meds *[]models.Medication) error {
		for i := range *meds {
			if (*meds)[i].ID == id {
				(*meds)[i].ReminderTime = reminder
				updated = (*meds)[i]
				return nil
			}
		}
		return errMedicationNotFound
	})
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	return &updated, nil
}

// normalizeReminder accepts HH:MM (24h). Empty means "no reminder".
func normalizeReminder(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil, nil
	}
	parsed, err := time.Parse("15:04", t)
	if err != nil {
		return nil, invalid("Reminder time must be in HH:MM format")
	}
	out := parsed.Format("15:04")
	return &out, nil
}
