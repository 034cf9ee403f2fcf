package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/hospital-directory/internal/cache"
	"github.com/spec-kit/hospital-directory/internal/domain"
	"github.com/spec-kit/hospital-directory/internal/events"
	"github.com/spec-kit/hospital-directory/internal/observability"
	"github.com/spec-kit/hospital-directory/internal/repository"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

// Client facing messages of the specialization routes.
const (
	MsgSpecializationNotFound = "Specialization not found"
	MsgSpecializationDeleted  = "Specialization deleted successfully"
	MsgSpecializationExists   = "Specialization already exists"
)

const specializationListKey = "list"

// SpecializationInput carries a validated create request.
type SpecializationInput struct {
	Name        string
	Description string
	Icon        string
}

// SpecializationPatch carries a partial update.
type SpecializationPatch struct {
	Name        *string
	Description *string
	Icon        *string
}

// SpecializationService manages the specialization catalogue.
type SpecializationService struct {
	specs      repository.SpecializationRepository
	cache      cache.Cache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// SpecializationDependencies encapsulates collaborators for the service.
type SpecializationDependencies struct {
	SpecializationRepo repository.SpecializationRepository
	Cache              cache.Cache
	Dispatcher         events.Dispatcher
	Metrics            *observability.Metrics
	Logger             *zap.Logger
}

// NewSpecializationService builds the service. A nil cache disables caching.
func NewSpecializationService(deps SpecializationDependencies) *SpecializationService {
	svc := &SpecializationService{
		specs:      deps.SpecializationRepo,
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

// List returns every specialization sorted by name.
func (s *SpecializationService) List(ctx context.Context) ([]domain.Specialization, error) {
	return readThrough(ctx, s.cache, s.metrics, s.logger, cache.PrefixSpecializations, specializationListKey, func() ([]domain.Specialization, error) {
		specs, err := s.specs.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list specializations: %w", err)
		}
		return specs, nil
	})
}

// Get returns one specialization. Malformed ids are reported as not found.
func (s *SpecializationService) Get(ctx context.Context, id string) (*domain.Specialization, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound(MsgSpecializationNotFound)
	}
	return readThrough(ctx, s.cache, s.metrics, s.logger, cache.PrefixSpecializations, "id:"+id, func() (*domain.Specialization, error) {
		return s.load(ctx, id)
	})
}

func (s *SpecializationService) load(ctx context.Context, id string) (*domain.Specialization, error) {
	spec, err := s.specs.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound(MsgSpecializationNotFound)
		}
		return nil, fmt.Errorf("get specialization: %w", err)
	}
	return spec, nil
}

// Create stores a new specialization. Names are unique.
func (s *SpecializationService) Create(ctx context.Context, actorID string, in SpecializationInput) (*domain.Specialization, error) {
	spec := &domain.Specialization{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Icon:        strings.TrimSpace(in.Icon),
	}
	if spec.Icon == "" {
		spec.Icon = domain.DefaultSpecializationIcon
	}
	if err := s.specs.Create(ctx, spec); err != nil {
		return nil, mapSpecializationWriteError(err)
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventSpecializationCreated, spec.ID, actorID,
		events.SpecializationPayload{Name: spec.Name}))
	return spec, nil
}

// Update applies patch to the specialization identified by id.
func (s *SpecializationService) Update(ctx context.Context, actorID, id string, patch SpecializationPatch) (*domain.Specialization, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFound(MsgSpecializationNotFound)
	}
	spec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		spec.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		spec.Description = *patch.Description
	}
	if patch.Icon != nil {
		spec.Icon = strings.TrimSpace(*patch.Icon)
		if spec.Icon == "" {
			spec.Icon = domain.DefaultSpecializationIcon
		}
	}

	if err := s.specs.Update(ctx, spec); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound(MsgSpecializationNotFound)
		}
		return nil, mapSpecializationWriteError(err)
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventSpecializationUpdated, id, actorID,
		events.SpecializationPayload{Name: spec.Name}))
	return spec, nil
}

// Delete removes the specialization and every hospital reference to it.
func (s *SpecializationService) Delete(ctx context.Context, actorID, id string) error {
	if !validID(id) {
		return apperrors.NewNotFound(MsgSpecializationNotFound)
	}
	if err := s.specs.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound(MsgSpecializationNotFound)
		}
		return fmt.Errorf("delete specialization: %w", err)
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventSpecializationDeleted, id, actorID, nil))
	return nil
}

func mapSpecializationWriteError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict(MsgSpecializationExists, map[string]any{"name": "must be unique"})
	}
	return fmt.Errorf("save specialization: %w", err)
}
