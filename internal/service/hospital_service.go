package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/hospital-directory/internal/cache"
	"github.com/spec-kit/hospital-directory/internal/domain"
	"github.com/spec-kit/hospital-directory/internal/events"
	"github.com/spec-kit/hospital-directory/internal/observability"
	"github.com/spec-kit/hospital-directory/internal/repository"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

// Client facing messages of the hospital routes.
const (
	MsgHospitalNotFound = "Hospital not found"
	MsgHospitalDeleted  = "Hospital deleted successfully"
)

// HospitalInput carries a validated create request.
type HospitalInput struct {
	Name              string
	Description       string
	Chain             string
	Location          domain.Location
	ContactInfo       domain.ContactInfo
	SpecializationIDs []string
	Photos            []domain.Photo
}

// HospitalPatch carries a partial update. Nil fields are left unchanged;
// nested objects and lists replace the stored value whole.
type HospitalPatch struct {
	Name              *string
	Description       *string
	Chain             *string
	Location          *domain.Location
	ContactInfo       *domain.ContactInfo
	SpecializationIDs *[]string
	Photos            *[]domain.Photo
}

// HospitalService manages hospital records and their cached views.
type HospitalService struct {
	hospitals  repository.HospitalRepository
	cache      cache.Cache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// HospitalDependencies encapsulates collaborators for the hospital service.
type HospitalDependencies struct {
	HospitalRepo repository.HospitalRepository
	Cache        cache.Cache
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// NewHospitalService builds the service. A nil cache disables caching.
func NewHospitalService(deps HospitalDependencies) *HospitalService {
	svc := &HospitalService{
		hospitals:  deps.HospitalRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	if svc.cache == nil {
		svc.cache = cache.Noop{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

func hospitalListKey(filter domain.HospitalFilter) string {
	norm := func(v string) string { return strings.ToLower(strings.TrimSpace(v)) }
	return fmt.Sprintf("list:%s|%s|%s",
		norm(filter.Specialization), norm(filter.City), norm(filter.Chain))
}

func hospitalKey(id string) string {
	return "id:" + id
}

// List returns hospitals newest first, narrowed by filter.
func (s *HospitalService) List(ctx context.Context, filter domain.HospitalFilter) ([]domain.Hospital, error) {
	return readThrough(ctx, s.cache, s.metrics, s.logger, cache.PrefixHospitals, hospitalListKey(filter), func() ([]domain.Hospital, error) {
		hospitals, err := s.hospitals.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list hospitals: %w", err)
		}
		return hospitals, nil
	})
}

// Get returns one hospital. Malformed ids are reported as not found.
func (s *HospitalService) Get(ctx context.Context, id string) (*domain.Hospital, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound(MsgHospitalNotFound)
	}
	return readThrough(ctx, s.cache, s.metrics, s.logger, cache.PrefixHospitals, hospitalKey(id), func() (*domain.Hospital, error) {
		return s.load(ctx, id)
	})
}

func (s *HospitalService) load(ctx context.Context, id string) (*domain.Hospital, error) {
	hospital, err := s.hospitals.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound(MsgHospitalNotFound)
		}
		return nil, fmt.Errorf("get hospital: %w", err)
	}
	return hospital, nil
}

// Create stores a new hospital and returns it with resolved specializations.
func (s *HospitalService) Create(ctx context.Context, actorID string, in HospitalInput) (*domain.Hospital, error) {
	specIDs, err := normalizeSpecializationIDs(in.SpecializationIDs)
	if err != nil {
		return nil, err
	}

	hospital := &domain.Hospital{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Chain:             strings.TrimSpace(in.Chain),
		Location:          in.Location,
		ContactInfo:       in.ContactInfo,
		SpecializationIDs: specIDs,
		Photos:            in.Photos,
	}
	if err := s.hospitals.Create(ctx, hospital); err != nil {
		return nil, s.mapWriteError(err)
	}

	created, err := s.load(ctx, hospital.ID)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventHospitalCreated, created.ID, actorID, hospitalPayload(created)))
	return created, nil
}

// Update applies patch to the hospital identified by id.
func (s *HospitalService) Update(ctx context.Context, actorID, id string, patch HospitalPatch) (*domain.Hospital, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound(MsgHospitalNotFound)
	}
	hospital, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		hospital.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		hospital.Description = *patch.Description
	}
	if patch.Chain != nil {
		hospital.Chain = strings.TrimSpace(*patch.Chain)
	}
	if patch.Location != nil {
		hospital.Location = *patch.Location
	}
	if patch.ContactInfo != nil {
		hospital.ContactInfo = *patch.ContactInfo
	}
	if patch.Photos != nil {
		hospital.Photos = *patch.Photos
	}
	if patch.SpecializationIDs != nil {
		specIDs, err := normalizeSpecializationIDs(*patch.SpecializationIDs)
		if err != nil {
			return nil, err
		}
		hospital.SpecializationIDs = specIDs
	}

	if err := s.hospitals.Update(ctx, hospital); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound(MsgHospitalNotFound)
		}
		return nil, s.mapWriteError(err)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventHospitalUpdated, id, actorID, hospitalPayload(updated)))
	return updated, nil
}

// Delete removes the hospital identified by id.
func (s *HospitalService) Delete(ctx context.Context, actorID, id string) error {
	if !validID(id) {
		return apperrors.NewNotFound(MsgHospitalNotFound)
	}
	if err := s.hospitals.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound(MsgHospitalNotFound)
		}
		return fmt.Errorf("delete hospital: %w", err)
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventHospitalDeleted, id, actorID, nil))
	return nil
}

func (s *HospitalService) mapWriteError(err error) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return apperrors.NewValidationError("Unknown specialization", map[string]any{
			"specializations": "one or more specializations do not exist",
		})
	}
	return fmt.Errorf("save hospital: %w", err)
}

func hospitalPayload(h *domain.Hospital) events.HospitalPayload {
	return events.HospitalPayload{Name: h.Name, Chain: h.Chain, City: h.Location.City}
}

// normalizeSpecializationIDs validates and de-duplicates references, keeping
// the first occurrence order.
func normalizeSpecializationIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		parsed, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, apperrors.NewValidationError("Invalid specialization id", map[string]any{
				"specializations": raw,
			})
		}
		id := parsed.String()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
