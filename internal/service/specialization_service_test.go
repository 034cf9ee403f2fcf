package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hospital-directory/internal/domain"
)

func TestSpecializationService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)

	spec, err := env.specializations.Create(context.Background(), "admin", SpecializationInput{Name: "  Cardiology ", Description: "Heart"})
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", spec.Name)
	assert.Equal(t, domain.DefaultSpecializationIcon, spec.Icon)
	assert.NotEmpty(t, spec.ID)
}

func TestSpecializationService_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	env.createSpecialization(t, "Cardiology")
	other := env.createSpecialization(t, "Neurology")

	_, err := env.specializations.Create(context.Background(), "admin", SpecializationInput{Name: "Cardiology", Description: "again"})
	requireDomainError(t, err, http.StatusBadRequest, MsgSpecializationExists)

	name := "Cardiology"
	_, err = env.specializations.Update(context.Background(), "admin", other.ID, SpecializationPatch{Name: &name})
	requireDomainError(t, err, http.StatusBadRequest, MsgSpecializationExists)
}

func TestSpecializationService_ListSortedAndInvalidated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createSpecialization(t, "Neurology")
	env.createSpecialization(t, "Cardiology")

	specs, err := env.specializations.List(ctx)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "Cardiology", specs[0].Name)

	env.createSpecialization(t, "Anesthesiology")
	specs, err = env.specializations.List(ctx)
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.Equal(t, "Anesthesiology", specs[0].Name)
}

func TestSpecializationService_UpdatePartial(t *testing.T) {
	env := newTestEnv(t)
	spec := env.createSpecialization(t, "Cardiology")

	desc := "Heart and vessels"
	updated, err := env.specializations.Update(context.Background(), "admin", spec.ID, SpecializationPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", updated.Name)
	assert.Equal(t, desc, updated.Description)

	got, err := env.specializations.Get(context.Background(), spec.ID)
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
}

func TestSpecializationService_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.specializations.Get(ctx, "nope")
	requireDomainError(t, err, http.StatusNotFound, MsgSpecializationNotFound)
	_, err = env.specializations.Get(ctx, uuid.NewString())
	requireDomainError(t, err, http.StatusNotFound, MsgSpecializationNotFound)
	requireDomainError(t, env.specializations.Delete(ctx, "admin", uuid.NewString()), http.StatusNotFound, MsgSpecializationNotFound)
}
