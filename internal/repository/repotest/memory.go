// Package repotest provides in-memory repositories with the same error
// contract as the Postgres implementations: pgx.ErrNoRows for missing rows,
// repository.ErrDuplicate for unique violations and
// repository.ErrInvalidReference for unknown specialization ids.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hospital-directory/internal/domain"
	"github.com/spec-kit/hospital-directory/internal/repository"
)

// Store backs all three repositories so hospital references resolve against
// the same specialization set.
type Store struct {
	mu              sync.Mutex
	clock           time.Time
	users           map[string]domain.User
	specializations map[string]domain.Specialization
	hospitals       map[string]domain.Hospital

	// Err, when set, is returned by every call.
	Err error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		clock:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:           make(map[string]domain.User),
		specializations: make(map[string]domain.Specialization),
		hospitals:       make(map[string]domain.Hospital),
	}
}

// tick returns a strictly increasing timestamp. Callers hold mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// SetErr sets the error returned by every call.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// Users returns a UserRepository over the store.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Specializations returns a SpecializationRepository over the store.
func (s *Store) Specializations() repository.SpecializationRepository { return specializationRepo{s} }

// Hospitals returns a HospitalRepository over the store.
func (s *Store) Hospitals() repository.HospitalRepository { return hospitalRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type specializationRepo struct{ s *Store }

func (r specializationRepo) nameTaken(name, exceptID string) bool {
	for id, spec := range r.s.specializations {
		if id != exceptID && spec.Name == name {
			return true
		}
	}
	return false
}

func (r specializationRepo) Create(_ context.Context, spec *domain.Specialization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.nameTaken(spec.Name, "") {
		return repository.ErrDuplicate
	}
	spec.ID = uuid.NewString()
	spec.CreatedAt = r.s.tick()
	r.s.specializations[spec.ID] = *spec
	return nil
}

func (r specializationRepo) Update(_ context.Context, spec *domain.Specialization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	existing, ok := r.s.specializations[spec.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.nameTaken(spec.Name, spec.ID) {
		return repository.ErrDuplicate
	}
	spec.CreatedAt = existing.CreatedAt
	r.s.specializations[spec.ID] = *spec
	return nil
}

func (r specializationRepo) GetByID(_ context.Context, id string) (*domain.Specialization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	spec, ok := r.s.specializations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &spec, nil
}

func (r specializationRepo) List(context.Context) ([]domain.Specialization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	specs := make([]domain.Specialization, 0, len(r.s.specializations))
	for _, spec := range r.s.specializations {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

func (r specializationRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.specializations[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.specializations, id)
	for hid, hospital := range r.s.hospitals {
		kept := hospital.SpecializationIDs[:0:0]
		for _, sid := range hospital.SpecializationIDs {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		hospital.SpecializationIDs = kept
		r.s.hospitals[hid] = hospital
	}
	return nil
}

type hospitalRepo struct{ s *Store }

func (r hospitalRepo) checkRefs(ids []string) error {
	for _, id := range ids {
		if _, ok := r.s.specializations[id]; !ok {
			return repository.ErrInvalidReference
		}
	}
	return nil
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r hospitalRepo) Create(_ context.Context, hospital *domain.Hospital) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if err := r.checkRefs(hospital.SpecializationIDs); err != nil {
		return err
	}
	hospital.ID = uuid.NewString()
	hospital.CreatedAt = r.s.tick()
	hospital.UpdatedAt = hospital.CreatedAt
	stored := *hospital
	stored.SpecializationIDs = dedup(hospital.SpecializationIDs)
	stored.Specializations = nil
	r.s.hospitals[hospital.ID] = stored
	return nil
}

func (r hospitalRepo) Update(_ context.Context, hospital *domain.Hospital) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	existing, ok := r.s.hospitals[hospital.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := r.checkRefs(hospital.SpecializationIDs); err != nil {
		return err
	}
	stored := *hospital
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.s.tick()
	stored.SpecializationIDs = dedup(hospital.SpecializationIDs)
	stored.Specializations = nil
	r.s.hospitals[hospital.ID] = stored
	return nil
}

// resolve fills Specializations in submitted order like the SQL join does.
func (r hospitalRepo) resolve(hospital domain.Hospital) domain.Hospital {
	hospital.Specializations = []domain.SpecializationRef{}
	for _, id := range hospital.SpecializationIDs {
		if spec, ok := r.s.specializations[id]; ok {
			hospital.Specializations = append(hospital.Specializations, domain.SpecializationRef{ID: spec.ID, Name: spec.Name})
		}
	}
	ids := make([]string, 0, len(hospital.Specializations))
	for _, ref := range hospital.Specializations {
		ids = append(ids, ref.ID)
	}
	hospital.SpecializationIDs = ids
	if hospital.Photos == nil {
		hospital.Photos = []domain.Photo{}
	}
	return hospital
}

func (r hospitalRepo) GetByID(_ context.Context, id string) (*domain.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	hospital, ok := r.s.hospitals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	resolved := r.resolve(hospital)
	return &resolved, nil
}

func (r hospitalRepo) List(_ context.Context, filter domain.HospitalFilter) ([]domain.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []domain.Hospital{}
	for _, hospital := range r.s.hospitals {
		resolved := r.resolve(hospital)
		if !matches(resolved, filter) {
			continue
		}
		out = append(out, resolved)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matches(h domain.Hospital, filter domain.HospitalFilter) bool {
	if city := strings.TrimSpace(filter.City); city != "" && !strings.EqualFold(h.Location.City, city) {
		return false
	}
	if chain := strings.TrimSpace(filter.Chain); chain != "" && !strings.EqualFold(h.Chain, chain) {
		return false
	}
	if name := strings.TrimSpace(filter.Specialization); name != "" {
		for _, ref := range h.Specializations {
			if strings.EqualFold(ref.Name, name) {
				return true
			}
		}
		return false
	}
	return true
}

func (r hospitalRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.hospitals[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.hospitals, id)
	return nil
}
