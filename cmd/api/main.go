package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hospital-directory/internal/api/dto"
	httptransport "github.com/spec-kit/hospital-directory/internal/api/http"
	"github.com/spec-kit/hospital-directory/internal/api/http/handlers"
	"github.com/spec-kit/hospital-directory/internal/auth"
	"github.com/spec-kit/hospital-directory/internal/cache"
	"github.com/spec-kit/hospital-directory/internal/config"
	"github.com/spec-kit/hospital-directory/internal/events"
	"github.com/spec-kit/hospital-directory/internal/observability"
	"github.com/spec-kit/hospital-directory/internal/persistence"
	"github.com/spec-kit/hospital-directory/internal/repository"
	"github.com/spec-kit/hospital-directory/internal/service"
	"github.com/spec-kit/hospital-directory/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redisClient.Close()

	checks := map[string]handlers.Pinger{"postgres": pg}
	var responseCache cache.Cache = cache.Noop{}
	if redisClient.Enabled() {
		responseCache = cache.NewRedisCache(redisClient.Client, cfg.App.Name, cfg.Redis.CacheTTL())
		checks["redis"] = redisClient
	}

	userRepo := repository.NewUserRepository(pg.Pool)
	specializationRepo := repository.NewSpecializationRepository(pg.Pool)
	hospitalRepo := repository.NewHospitalRepository(pg.Pool)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService, err := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     userRepo,
		TokenManager: tokens,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	hospitalService := service.NewHospitalService(service.HospitalDependencies{
		HospitalRepo: hospitalRepo,
		Cache:        responseCache,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	specializationService := service.NewSpecializationService(service.SpecializationDependencies{
		SpecializationRepo: specializationRepo,
		Cache:              responseCache,
		Dispatcher:         dispatcher,
		Metrics:            metrics,
		Logger:             logger,
	})

	invalidation := service.NewCacheInvalidationService(dispatcher, responseCache, logger)
	worker.StartCacheInvalidationWorker(invalidation)

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo, cfg.Postgres.StoreTimeout())
	validate := dto.NewValidator()

	app := httptransport.NewApp(cfg.App)
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		RequestTimeout:   cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks, metrics, logger),
		Users:           handlers.NewUsersHandler(authService, validate),
		Hospitals:       handlers.NewHospitalsHandler(hospitalService, validate),
		Specializations: handlers.NewSpecializationsHandler(specializationService, validate),
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
