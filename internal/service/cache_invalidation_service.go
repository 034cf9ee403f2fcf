package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/hospital-directory/internal/cache"
	"github.com/spec-kit/hospital-directory/internal/events"
)

// CacheInvalidationService drops cached views when the data behind them changes.
type CacheInvalidationService struct {
	dispatcher events.Dispatcher
	cache      cache.Cache
	logger     *zap.Logger
}

// NewCacheInvalidationService creates the service.
func NewCacheInvalidationService(dispatcher events.Dispatcher, c cache.Cache, logger *zap.Logger) *CacheInvalidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidationService{
		dispatcher: dispatcher,
		cache:      c,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (s *CacheInvalidationService) RegisterHandlers() {
	if s.dispatcher == nil || s.cache == nil {
		return
	}
	for _, eventType := range events.HospitalEvents {
		s.dispatcher.Subscribe(eventType, s.handleHospitalChanged)
	}
	for _, eventType := range events.SpecializationEvents {
		s.dispatcher.Subscribe(eventType, s.handleSpecializationChanged)
	}
}

func (s *CacheInvalidationService) handleHospitalChanged(ctx context.Context, event events.Event) error {
	return s.invalidate(ctx, event, cache.PrefixHospitals)
}

// Hospital views embed specialization names, so both families go.
func (s *CacheInvalidationService) handleSpecializationChanged(ctx context.Context, event events.Event) error {
	return s.invalidate(ctx, event, cache.PrefixSpecializations, cache.PrefixHospitals)
}

func (s *CacheInvalidationService) invalidate(ctx context.Context, event events.Event, prefixes ...string) error {
	for _, prefix := range prefixes {
		if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
			s.logger.Error("cache invalidation failed",
				zap.String("event_type", string(event.Type)),
				zap.String("prefix", prefix),
				zap.Error(err))
			return err
		}
	}
	s.logger.Debug("cache invalidated",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("resource_id", event.ResourceID),
		zap.Strings("prefixes", prefixes))
	return nil
}
