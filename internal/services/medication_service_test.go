package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

func newTestMedicationService() (*MedicationService, *store.MemoryStore) {
	s := store.NewMemoryStore()
	svc := NewMedicationService(s)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("med-%d", n)
	}
	return svc, s
}

func strPtr(s string) *string { return &s }

func TestMedicationListEmpty(t *testing.T) {
	svc, _ := newTestMedicationService()

	meds, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, meds)
	assert.Empty(t, meds)
}

func TestMedicationAdd(t *testing.T) {
	svc, _ := newTestMedicationService()
	ctx := context.Background()

	med, err := svc.Add(ctx, "u1", &dto.CreateMedicationRequest{Name: "Aspirin", Dosage: "100mg", Frequency: "2"})
	require.NoError(t, err)
	assert.Equal(t, "med-1", med.ID)
	assert.Equal(t, fixedNow, med.CreatedAt)
	assert.Nil(t, med.ReminderTime)

	meds, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, *med, meds[0])
}

func TestMedicationAddUsesUUIDByDefault(t *testing.T) {
	svc := NewMedicationService(store.NewMemoryStore())

	a, err := svc.Add(context.Background(), "u1", &dto.CreateMedicationRequest{Name: "A", Dosage: "1", Frequency: "1"})
	require.NoError(t, err)
	b, err := svc.Add(context.Background(), "u1", &dto.CreateMedicationRequest{Name: "B", Dosage: "1", Frequency: "1"})
	require.NoError(t, err)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestMedicationAddValidation(t *testing.T) {
	cases := map[string]dto.CreateMedicationRequest{
		"missing name":      {Dosage: "100mg", Frequency: "1"},
		"missing dosage":    {Name: "Aspirin", Frequency: "1"},
		"missing frequency": {Name: "Aspirin", Dosage: "100mg"},
		"blank name":        {Name: "   ", Dosage: "100mg", Frequency: "1"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			svc, s := newTestMedicationService()
			_, err := svc.Add(context.Background(), "u1", &req)

			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, "Name, dosage, and frequency are required", err.Error())
			_, err = s.Get(context.Background(), store.MedicationsKey("u1"))
			assert.ErrorIs(t, err, store.ErrNotFound, "nothing persisted")
		})
	}
}

func TestMedicationAddWithReminder(t *testing.T) {
	svc, _ := newTestMedicationService()

	med, err := svc.Add(context.Background(), "u1", &dto.CreateMedicationRequest{
		Name: "Metformin", Dosage: "500mg", Frequency: "2", ReminderTime: strPtr("8:05"),
	})
	require.NoError(t, err)
	require.NotNil(t, med.ReminderTime)
	assert.Equal(t, "08:05", *med.ReminderTime)

	_, err = svc.Add(context.Background(), "u1", &dto.CreateMedicationRequest{
		Name: "Metformin", Dosage: "500mg", Frequency: "2", ReminderTime: strPtr("25:99"),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMedicationDelete(t *testing.T) {
	svc, _ := newTestMedicationService()
	ctx := context.Background()

	a, _ := svc.Add(ctx, "u1", &dto.CreateMedicationRequest{Name: "A", Dosage: "1", Frequency: "1"})
	b, _ := svc.Add(ctx, "u1", &dto.CreateMedicationRequest{Name: "B", Dosage: "1", Frequency: "1"})

	require.NoError(t, svc.Delete(ctx, "u1", a.ID))
	meds, _ := svc.List(ctx, "u1")
	assert.Equal(t, []models.Medication{*b}, meds)

	require.NoError(t, svc.Delete(ctx, "u1", "does-not-exist"))
	meds, _ = svc.List(ctx, "u1")
	assert.Equal(t, []models.Medication{*b}, meds, "unknown id is a no-op")
}

func TestMedicationUpdateReminder(t *testing.T) {
	svc, _ := newTestMedicationService()
	ctx := context.Background()
	med, _ := svc.Add(ctx, "u1", &dto.CreateMedicationRequest{Name: "A", Dosage: "1", Frequency: "1"})

	updated, err := svc.UpdateReminder(ctx, "u1", med.ID, strPtr("21:00"))
	require.NoError(t, err)
	require.NotNil(t, updated.ReminderTime)
	assert.Equal(t, "21:00", *updated.ReminderTime)
	assert.Equal(t, med.Name, updated.Name)
	assert.Equal(t, med.CreatedAt, updated.CreatedAt)

	cleared, err := svc.UpdateReminder(ctx, "u1", med.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.ReminderTime)

	meds, _ := svc.List(ctx, "u1")
	require.Len(t, meds, 1)
	assert.Nil(t, meds[0].ReminderTime)
	assert.Equal(t, *med, meds[0], "other fields untouched")
}

func TestMedicationUpdateReminderUnknownID(t *testing.T) {
	svc, _ := newTestMedicationService()
	ctx := context.Background()
	med, _ := svc.Add(ctx, "u1", &dto.CreateMedicationRequest{Name: "A", Dosage: "1", Frequency: "1"})

	_, err := svc.UpdateReminder(ctx, "u1", "nope", strPtr("07:00"))
	assert.ErrorIs(t, err, ErrNotFound)

	meds, _ := svc.List(ctx, "u1")
	assert.Equal(t, []models.Medication{*med}, meds)
}

func TestMedicationsAreUserScoped(t *testing.T) {
	svc, _ := newTestMedicationService()
	ctx := context.Background()
	_, _ = svc.Add(ctx, "u1", &dto.CreateMedicationRequest{Name: "A", Dosage: "1", Frequency: "1"})

	meds, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestMedicationConcurrentAdds(t *testing.T) {
	svc := NewMedicationService(store.NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Add(ctx, "u1", &dto.CreateMedicationRequest{Name: fmt.Sprintf("M%d", i), Dosage: "1", Frequency: "1"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	meds, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, meds, 25)
}
