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

var specializationRowColumns = []string{"id", "name", "description", "icon", "created_at"}

func TestSpecializationRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewSpecializationRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO specializations")).
		WithArgs("Cardiology", "Heart", domain.DefaultSpecializationIcon).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("s-1", now))

	spec := &domain.Specialization{Name: "Cardiology", Description: "Heart", Icon: domain.DefaultSpecializationIcon}
	require.NoError(t, repo.Create(context.Background(), spec))
	assert.Equal(t, "s-1", spec.ID)
}

func TestSpecializationRepository_CreateDuplicateName(t *testing.T) {
	mock := newMock(t)
	repo := NewSpecializationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO specializations")).
		WithArgs("Cardiology", "Heart", "icon.png").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Specialization{Name: "Cardiology", Description: "Heart", Icon: "icon.png"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSpecializationRepository_ListSortedByName(t *testing.T) {
	mock := newMock(t)
	repo := NewSpecializationRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM specializations ORDER BY name ASC")).
		WillReturnRows(pgxmock.NewRows(specializationRowColumns).
			AddRow("s-2", "Cardiology", "Heart", "a.png", now).
			AddRow("s-1", "Neurology", "Brain", "b.png", now))

	specs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "Cardiology", specs[0].Name)
	assert.Equal(t, "Neurology", specs[1].Name)
}

func TestSpecializationRepository_ListEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewSpecializationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM specializations")).
		WillReturnRows(pgxmock.NewRows(specializationRowColumns))

	specs, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, specs)
	assert.Empty(t, specs)
}

func TestSpecializationRepository_UpdateMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewSpecializationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE specializations")).
		WithArgs("Cardiology", "Heart", "a.png", "s-9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.Specialization{ID: "s-9", Name: "Cardiology", Description: "Heart", Icon: "a.png"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestSpecializationRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewSpecializationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM specializations")).
		WithArgs("s-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM specializations")).
		WithArgs("s-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "s-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "s-1"), pgx.ErrNoRows)
}
