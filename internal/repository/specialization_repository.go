package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hospital-directory/internal/domain"
)

// SpecializationRepository encapsulates specialization persistence.
type SpecializationRepository interface {
	Create(ctx context.Context, spec *domain.Specialization) error
	Update(ctx context.Context, spec *domain.Specialization) error
	GetByID(ctx context.Context, id string) (*domain.Specialization, error)
	List(ctx context.Context) ([]domain.Specialization, error)
	Delete(ctx context.Context, id string) error
}

type specializationRepository struct {
	db DBTX
}

// NewSpecializationRepository instantiates repository.
func NewSpecializationRepository(db DBTX) SpecializationRepository {
	return &specializationRepository{db: db}
}

const specializationColumns = `id, name, description, icon, created_at`

func (r *specializationRepository) Create(ctx context.Context, spec *domain.Specialization) error {
	const query = `
        INSERT INTO specializations (name, description, icon)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, spec.Name, spec.Description, spec.Icon).
		Scan(&spec.ID, &spec.CreatedAt)
	return translate(err)
}

func (r *specializationRepository) Update(ctx context.Context, spec *domain.Specialization) error {
	const query = `
        UPDATE specializations SET name=$1, description=$2, icon=$3
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query, spec.Name, spec.Description, spec.Icon, spec.ID)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *specializationRepository) GetByID(ctx context.Context, id string) (*domain.Specialization, error) {
	query := `SELECT ` + specializationColumns + ` FROM specializations WHERE id=$1`

	var spec domain.Specialization
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&spec.ID,
		&spec.Name,
		&spec.Description,
		&spec.Icon,
		&spec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (r *specializationRepository) List(ctx context.Context) ([]domain.Specialization, error) {
	query := `SELECT ` + specializationColumns + ` FROM specializations ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specs := []domain.Specialization{}
	for rows.Next() {
		var spec domain.Specialization
		if err := rows.Scan(
			&spec.ID,
			&spec.Name,
			&spec.Description,
			&spec.Icon,
			&spec.CreatedAt,
		); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

// Delete removes the specialization. Hospital references go with it through
// the join table's cascade.
func (r *specializationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM specializations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
