package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hospital-directory/internal/domain"
)

var hospitalRowColumns = []string{"id", "name", "description", "chain", "location", "contact_info", "photos", "created_at", "updated_at"}

func sampleHospital() *domain.Hospital {
	return &domain.Hospital{
		Name:        "St. Mary",
		Description: "General hospital",
		Chain:       "Mercy",
		Location:    domain.Location{Address: "1 Main St", City: "Springfield", State: "IL"},
		ContactInfo: domain.ContactInfo{Phone: "555-0100", Email: "info@stmary.org"},
	}
}

func TestHospitalRepository_CreateLinksSpecializations(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)
	now := time.Now().UTC()

	hospital := sampleHospital()
	hospital.SpecializationIDs = []string{"s-1", "s-2"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO hospitals")).
		WithArgs("St. Mary", "General hospital", "Mercy", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("h-1", now, now))
	mock.ExpectExec(`(?s)INSERT INTO hospital_specializations \(hospital_id, specialization_id, position\).*WITH ORDINALITY`).
		WithArgs("h-1", []string{"s-1", "s-2"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), hospital))
	assert.Equal(t, "h-1", hospital.ID)
}

func TestHospitalRepository_CreateWithoutSpecializations(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO hospitals")).
		WithArgs("St. Mary", "General hospital", "Mercy", pgxmock.AnyArg(), pgxmock.AnyArg(), []byte("[]")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("h-1", now, now))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), sampleHospital()))
}

func TestHospitalRepository_CreateUnknownSpecializationRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)
	now := time.Now().UTC()

	hospital := sampleHospital()
	hospital.SpecializationIDs = []string{"s-missing"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO hospitals")).
		WithArgs("St. Mary", "General hospital", "Mercy", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("h-1", now, now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hospital_specializations")).
		WithArgs("h-1", []string{"s-missing"}).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), hospital)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestHospitalRepository_UpdateReplacesSpecializations(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)

	hospital := sampleHospital()
	hospital.ID = "h-1"
	hospital.SpecializationIDs = []string{"s-3"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE hospitals SET")).
		WithArgs("St. Mary", "General hospital", "Mercy", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "h-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM hospital_specializations")).
		WithArgs("h-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hospital_specializations")).
		WithArgs("h-1", []string{"s-3"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), hospital))
}

func TestHospitalRepository_UpdateMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)

	hospital := sampleHospital()
	hospital.ID = "h-9"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE hospitals SET")).
		WithArgs("St. Mary", "General hospital", "Mercy", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "h-9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), hospital)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestHospitalRepository_GetByIDPopulatesSpecializations(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM hospitals h WHERE h.id=$1")).
		WithArgs("h-1").
		WillReturnRows(pgxmock.NewRows(hospitalRowColumns).AddRow(
			"h-1", "St. Mary", "General hospital", "Mercy",
			[]byte(`{"address":"1 Main St","city":"Springfield","state":"IL","coordinates":{"latitude":39.8,"longitude":-89.6}}`),
			[]byte(`{"phone":"555-0100","email":"info@stmary.org"}`),
			[]byte(`[{"url":"https://img/1.png","caption":"Front"}]`),
			now, now,
		))
	mock.ExpectQuery(`(?s)FROM hospital_specializations hs.*ORDER BY hs\.position ASC`).
		WithArgs([]string{"h-1"}).
		WillReturnRows(pgxmock.NewRows([]string{"hospital_id", "id", "name"}).
			AddRow("h-1", "s-1", "Neurology").
			AddRow("h-1", "s-2", "Cardiology"))

	hospital, err := repo.GetByID(context.Background(), "h-1")
	require.NoError(t, err)
	assert.Equal(t, "Springfield", hospital.Location.City)
	require.NotNil(t, hospital.Location.Coordinates)
	assert.InDelta(t, 39.8, *hospital.Location.Coordinates.Latitude, 0.0001)
	assert.Equal(t, "555-0100", hospital.ContactInfo.Phone)
	assert.Equal(t, []domain.Photo{{URL: "https://img/1.png", Caption: "Front"}}, hospital.Photos)
	assert.Equal(t, []string{"s-1", "s-2"}, hospital.SpecializationIDs)
	assert.Equal(t, []string{"Neurology", "Cardiology"}, hospital.SpecializationNames())
}

func TestHospitalRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM hospitals h WHERE h.id=$1")).
		WithArgs("h-9").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "h-9")
	assert.True(t, IsNotFound(err))
}

func TestHospitalRepository_ListWithFilters(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)lower\(h\.location->>'city'\) = lower\(\$1\) AND lower\(h\.chain\) = lower\(\$2\) AND EXISTS .* ORDER BY h\.created_at DESC`).
		WithArgs("Springfield", "Mercy", "Cardiology").
		WillReturnRows(pgxmock.NewRows(hospitalRowColumns).
			AddRow("h-2", "Newer", "d", "Mercy", []byte(`{"city":"Springfield"}`), []byte(`{}`), []byte(`[]`), now, now).
			AddRow("h-1", "Older", "d", "Mercy", []byte(`{"city":"Springfield"}`), []byte(`{}`), []byte(`[]`), now.Add(-time.Hour), now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM hospital_specializations hs")).
		WithArgs([]string{"h-2", "h-1"}).
		WillReturnRows(pgxmock.NewRows([]string{"hospital_id", "id", "name"}).
			AddRow("h-1", "s-2", "Cardiology").
			AddRow("h-2", "s-2", "Cardiology"))

	hospitals, err := repo.List(context.Background(), domain.HospitalFilter{
		City:           "Springfield",
		Chain:          "Mercy",
		Specialization: "Cardiology",
	})
	require.NoError(t, err)
	require.Len(t, hospitals, 2)
	assert.Equal(t, "h-2", hospitals[0].ID)
	assert.Equal(t, []string{"Cardiology"}, hospitals[0].SpecializationNames())
	assert.Equal(t, []string{"Cardiology"}, hospitals[1].SpecializationNames())
}

func TestHospitalRepository_ListEmptySkipsPopulate(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM hospitals h WHERE 1=1 ORDER BY h.created_at DESC")).
		WillReturnRows(pgxmock.NewRows(hospitalRowColumns))

	hospitals, err := repo.List(context.Background(), domain.HospitalFilter{})
	require.NoError(t, err)
	assert.Empty(t, hospitals)
}

func TestHospitalRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewHospitalRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM hospitals")).
		WithArgs("h-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "h-1"), pgx.ErrNoRows)
}
