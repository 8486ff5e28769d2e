package app

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/smle-dev/smle/internal/config"
	deliveryHTTP "github.com/smle-dev/smle/internal/delivery/http"
	repo "github.com/smle-dev/smle/internal/domain/repository"
	"github.com/smle-dev/smle/internal/logger"
	"github.com/smle-dev/smle/internal/storage/postgres"
	"github.com/smle-dev/smle/internal/storage/redis"
	"github.com/smle-dev/smle/internal/tracking"
	"go.uber.org/fx"
)

// CommonModule provides the core dependencies shared by tracker applications.
var CommonModule = fx.Options(
	fx.Provide(
		// Core components
		config.NewConfig,
		logger.NewLogger,

		// Storage Layer - concrete implementations
		postgres.NewPool,
		redis.NewClient,
		redis.NewRunCache,
		postgres.NewRunRepository,

		// The run repository used by the service is the Postgres one wrapped
		// in the Redis cache-aside decorator.
		func(pgRepo *postgres.RunRepository, cache *redis.RunCache, logger *zerolog.Logger) repo.RunRepository {
			return redis.NewCachedRunRepository(pgRepo, cache, logger)
		},

		// Service Layer
		tracking.NewRunService,
	),
)

// TrackerModule defines the Fx module for the tracker HTTP API application.
var TrackerModule = fx.Options(
	CommonModule,
	fx.Provide(
		deliveryHTTP.NewHandlers,
		deliveryHTTP.NewServer,
	),

	fx.Invoke(func(server *deliveryHTTP.Server, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						panic(err)
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}),
)
