package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/hospital-directory/internal/observability"
	apperrors "github.com/spec-kit/hospital-directory/pkg/util/errorutil"
)

// Pinger is a dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness checks.
type HealthHandler struct {
	serviceName string
	version     string
	checks      map[string]Pinger
	metrics     *observability.Metrics
	logger      *zap.Logger
	timeout     time.Duration
}

const (
	dependencyOK          = "ok"
	dependencyUnavailable = "unavailable"
)

// NewHealthHandler returns a new handler instance. checks maps a dependency
// name to its pinger.
func NewHealthHandler(serviceName, version string, checks map[string]Pinger, metrics *observability.Metrics, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		checks:      checks,
		metrics:     metrics,
		logger:      logger,
		timeout:     2 * time.Second,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings every dependency concurrently and reports each result. Failure
// causes are logged, never returned.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	var (
		mu        sync.Mutex
		depStatus = make(map[string]any, len(h.checks))
	)
	var g errgroup.Group
	for name, check := range h.checks {
		name, check := name, check
		g.Go(func() error {
			err := check.Ping(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
				depStatus[name] = dependencyUnavailable
				return err
			}
			depStatus[name] = dependencyOK
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return apperrors.NewDomainError("DEPENDENCY_UNAVAILABLE", "one or more dependencies unavailable",
			fiber.StatusServiceUnavailable, depStatus)
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": depStatus,
	})
}

// Metrics reports the in-memory request and cache counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
