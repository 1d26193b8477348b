package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntakeGetEmpty(t *testing.T) {
	svc := NewIntakeService(store.NewMemoryStore())

	rec, err := svc.Get(context.Background(), "u1", "2024-03-10")
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Empty(t, rec)
}

func TestIntakeSetTaken(t *testing.T) {
	svc := NewIntakeService(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, svc.SetTaken(ctx, "u1", "m1", "2024-03-10", true))
	require.NoError(t, svc.SetTaken(ctx, "u1", "m2", "2024-03-10", false))

	rec, err := svc.Get(ctx, "u1", "2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, models.IntakeRecord{"m1": true, "m2": false}, rec)

	other, err := svc.Get(ctx, "u1", "2024-03-11")
	require.NoError(t, err)
	assert.Empty(t, other, "unrelated date unaffected")

	require.NoError(t, svc.SetTaken(ctx, "u1", "m1", "2024-03-10", false))
	rec, _ = svc.Get(ctx, "u1", "2024-03-10")
	assert.Equal(t, models.IntakeRecord{"m1": false, "m2": false}, rec)
}

func TestIntakeValidation(t *testing.T) {
	svc := NewIntakeService(store.NewMemoryStore())
	ctx := context.Background()

	err := svc.SetTaken(ctx, "u1", "", "2024-03-10", true)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Medication ID and date are required", err.Error())

	err = svc.SetTaken(ctx, "u1", "m1", "", true)
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.SetTaken(ctx, "u1", "m1", "10/03/2024", true)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Date must be in YYYY-MM-DD format", err.Error())

	_, err = svc.Get(ctx, "u1", "2024-03-10:evil")
	assert.ErrorIs(t, err, ErrValidation)
}
