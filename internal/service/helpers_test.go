package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/hospital-directory/internal/auth"
	"github.com/spec-kit/hospital-directory/internal/cache"
	"github.com/spec-kit/hospital-directory/internal/config"
	"github.com/spec-kit/hospital-directory/internal/domain"
	"github.com/spec-kit/hospital-directory/internal/events"
	"github.com/spec-kit/hospital-directory/internal/observability"
	"github.com/spec-kit/hospital-directory/internal/repository/repotest"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

type testEnv struct {
	store           *repotest.Store
	tokens          *auth.TokenManager
	auth            *AuthService
	hospitals       *HospitalService
	specializations *SpecializationService
	metrics         *observability.Metrics
	redis           *miniredis.Miniredis
	cache           cache.Cache
	dispatcher      events.Dispatcher
}

func newTestEnv(t *testing.T, adminEmails ...string) *testEnv {
	t.Helper()

	store := repotest.NewStore()
	tokens, err := auth.NewTokenManager("test-secret")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewRedisCache(client, "test", time.Minute)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	NewCacheInvalidationService(dispatcher, c, nil).RegisterHandlers()

	authSvc, err := NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost, AdminEmails: adminEmails}, AuthDependencies{
		UserRepo:     store.Users(),
		TokenManager: tokens,
		Dispatcher:   dispatcher,
	})
	require.NoError(t, err)

	return &testEnv{
		store:  store,
		tokens: tokens,
		auth:   authSvc,
		hospitals: NewHospitalService(HospitalDependencies{
			HospitalRepo: store.Hospitals(),
			Cache:        c,
			Dispatcher:   dispatcher,
			Metrics:      metrics,
		}),
		specializations: NewSpecializationService(SpecializationDependencies{
			SpecializationRepo: store.Specializations(),
			Cache:              c,
			Dispatcher:         dispatcher,
			Metrics:            metrics,
		}),
		metrics:    metrics,
		redis:      mr,
		cache:      c,
		dispatcher: dispatcher,
	}
}

func (e *testEnv) createSpecialization(t *testing.T, name string) *domain.Specialization {
	t.Helper()
	spec, err := e.specializations.Create(context.Background(), "admin", SpecializationInput{Name: name, Description: name + " care"})
	require.NoError(t, err)
	return spec
}

func hospitalInput(name, city, chain string, specIDs ...string) HospitalInput {
	return HospitalInput{
		Name:              name,
		Description:       "A hospital",
		Chain:             chain,
		Location:          domain.Location{Address: "1 Main St", City: city, State: "IL"},
		ContactInfo:       domain.ContactInfo{Phone: "555-0100", Email: "info@example.com"},
		SpecializationIDs: specIDs,
	}
}

func requireDomainError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	require.Equal(t, status, domainErr.HTTPStatus)
	if message != "" {
		require.Equal(t, message, domainErr.Message)
	}
}
