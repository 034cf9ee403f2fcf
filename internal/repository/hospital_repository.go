package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hospital-directory/internal/domain"
)

// HospitalRepository encapsulates hospital persistence. Reads resolve the
// specialization references; writes replace the reference set.
type HospitalRepository interface {
	Create(ctx context.Context, hospital *domain.Hospital) error
	Update(ctx context.Context, hospital *domain.Hospital) error
	GetByID(ctx context.Context, id string) (*domain.Hospital, error)
	List(ctx context.Context, filter domain.HospitalFilter) ([]domain.Hospital, error)
	Delete(ctx context.Context, id string) error
}

type hospitalRepository struct {
	db DBTX
}

// NewHospitalRepository instantiates repository.
func NewHospitalRepository(db DBTX) HospitalRepository {
	return &hospitalRepository{db: db}
}

const hospitalColumns = `h.id, h.name, h.description, h.chain, h.location, h.contact_info, h.photos, h.created_at, h.updated_at`

type hospitalDocs struct {
	location    []byte
	contactInfo []byte
	photos      []byte
}

func encodeDocs(h *domain.Hospital) (hospitalDocs, error) {
	var (
		docs hospitalDocs
		err  error
	)
	if docs.location, err = json.Marshal(h.Location); err != nil {
		return docs, fmt.Errorf("encode location: %w", err)
	}
	if docs.contactInfo, err = json.Marshal(h.ContactInfo); err != nil {
		return docs, fmt.Errorf("encode contact info: %w", err)
	}
	photos := h.Photos
	if photos == nil {
		photos = []domain.Photo{}
	}
	if docs.photos, err = json.Marshal(photos); err != nil {
		return docs, fmt.Errorf("encode photos: %w", err)
	}
	return docs, nil
}

func (r *hospitalRepository) Create(ctx context.Context, hospital *domain.Hospital) error {
	const query = `
        INSERT INTO hospitals (name, description, chain, location, contact_info, photos)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	docs, err := encodeDocs(hospital)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, query,
		hospital.Name,
		hospital.Description,
		hospital.Chain,
		docs.location,
		docs.contactInfo,
		docs.photos,
	).Scan(&hospital.ID, &hospital.CreatedAt, &hospital.UpdatedAt)
	if err == nil {
		err = linkSpecializations(ctx, tx, hospital.ID, hospital.SpecializationIDs)
	}
	if err != nil {
		_ = tx.Rollback(ctx)
		return translate(err)
	}
	return tx.Commit(ctx)
}

func (r *hospitalRepository) Update(ctx context.Context, hospital *domain.Hospital) error {
	const query = `
        UPDATE hospitals SET name=$1, description=$2, chain=$3, location=$4, contact_info=$5,
            photos=$6, updated_at=NOW()
        WHERE id=$7`

	docs, err := encodeDocs(hospital)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, query,
		hospital.Name,
		hospital.Description,
		hospital.Chain,
		docs.location,
		docs.contactInfo,
		docs.photos,
		hospital.ID,
	)
	if err == nil && cmd.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}
	if err == nil {
		_, err = tx.Exec(ctx, `DELETE FROM hospital_specializations WHERE hospital_id=$1`, hospital.ID)
	}
	if err == nil {
		err = linkSpecializations(ctx, tx, hospital.ID, hospital.SpecializationIDs)
	}
	if err != nil {
		_ = tx.Rollback(ctx)
		return translate(err)
	}
	return tx.Commit(ctx)
}

// linkSpecializations stores the references in submitted order.
func linkSpecializations(ctx context.Context, tx pgx.Tx, hospitalID string, specializationIDs []string) error {
	if len(specializationIDs) == 0 {
		return nil
	}
	const query = `
        INSERT INTO hospital_specializations (hospital_id, specialization_id, position)
        SELECT $1, ref.id, ref.ord
        FROM unnest($2::uuid[]) WITH ORDINALITY AS ref(id, ord)
        ON CONFLICT DO NOTHING`
	_, err := tx.Exec(ctx, query, hospitalID, specializationIDs)
	return err
}

func (r *hospitalRepository) GetByID(ctx context.Context, id string) (*domain.Hospital, error) {
	query := `SELECT ` + hospitalColumns + ` FROM hospitals h WHERE h.id=$1`

	hospital, err := scanHospital(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	hospitals := []domain.Hospital{*hospital}
	if err := r.attachSpecializations(ctx, hospitals); err != nil {
		return nil, err
	}
	return &hospitals[0], nil
}

func (r *hospitalRepository) List(ctx context.Context, filter domain.HospitalFilter) ([]domain.Hospital, error) {
	base := `SELECT ` + hospitalColumns + ` FROM hospitals h`
	clauses := []string{"1=1"}
	args := []any{}

	if city := strings.TrimSpace(filter.City); city != "" {
		args = append(args, city)
		clauses = append(clauses, fmt.Sprintf("lower(h.location->>'city') = lower($%d)", len(args)))
	}
	if chain := strings.TrimSpace(filter.Chain); chain != "" {
		args = append(args, chain)
		clauses = append(clauses, fmt.Sprintf("lower(h.chain) = lower($%d)", len(args)))
	}
	if name := strings.TrimSpace(filter.Specialization); name != "" {
		args = append(args, name)
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM hospital_specializations hs
            JOIN specializations s ON s.id = hs.specialization_id
            WHERE hs.hospital_id = h.id AND lower(s.name) = lower($%d))`, len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY h.created_at DESC", base, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hospitals := []domain.Hospital{}
	for rows.Next() {
		hospital, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		hospitals = append(hospitals, *hospital)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachSpecializations(ctx, hospitals); err != nil {
		return nil, err
	}
	return hospitals, nil
}

// attachSpecializations resolves the references of every hospital in one
// round trip, in the order they were submitted. References whose
// specialization is gone never appear.
func (r *hospitalRepository) attachSpecializations(ctx context.Context, hospitals []domain.Hospital) error {
	if len(hospitals) == 0 {
		return nil
	}
	const query = `
        SELECT hs.hospital_id, s.id, s.name
        FROM hospital_specializations hs
        JOIN specializations s ON s.id = hs.specialization_id
        WHERE hs.hospital_id = ANY($1)
        ORDER BY hs.position ASC, s.name ASC`

	ids := make([]string, len(hospitals))
	index := make(map[string]int, len(hospitals))
	for i := range hospitals {
		ids[i] = hospitals[i].ID
		index[hospitals[i].ID] = i
		hospitals[i].SpecializationIDs = []string{}
		hospitals[i].Specializations = []domain.SpecializationRef{}
	}

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hospitalID string
			ref        domain.SpecializationRef
		)
		if err := rows.Scan(&hospitalID, &ref.ID, &ref.Name); err != nil {
			return err
		}
		i, ok := index[hospitalID]
		if !ok {
			continue
		}
		hospitals[i].SpecializationIDs = append(hospitals[i].SpecializationIDs, ref.ID)
		hospitals[i].Specializations = append(hospitals[i].Specializations, ref)
	}
	return rows.Err()
}

func scanHospital(row pgx.Row) (*domain.Hospital, error) {
	var (
		hospital domain.Hospital
		docs     hospitalDocs
	)
	if err := row.Scan(
		&hospital.ID,
		&hospital.Name,
		&hospital.Description,
		&hospital.Chain,
		&docs.location,
		&docs.contactInfo,
		&docs.photos,
		&hospital.CreatedAt,
		&hospital.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(docs.location, &hospital.Location); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	if err := json.Unmarshal(docs.contactInfo, &hospital.ContactInfo); err != nil {
		return nil, fmt.Errorf("decode contact info: %w", err)
	}
	hospital.Photos = []domain.Photo{}
	if len(docs.photos) > 0 {
		if err := json.Unmarshal(docs.photos, &hospital.Photos); err != nil {
			return nil, fmt.Errorf("decode photos: %w", err)
		}
	}
	return &hospital, nil
}

// Delete removes the hospital and its specialization links.
func (r *hospitalRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM hospitals WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
