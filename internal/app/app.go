// Package app assembles the identity service from configuration: storage
// connections, the hashing pool, the identity service and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adonwheels/identity-api/internal/api"
	"github.com/adonwheels/identity-api/internal/api/handler"
	"github.com/adonwheels/identity-api/internal/core/service"
	mongostore "github.com/adonwheels/identity-api/internal/infrastructure/db/mongo"
	redisstore "github.com/adonwheels/identity-api/internal/infrastructure/db/redis"
	"github.com/adonwheels/identity-api/internal/infrastructure/queue"
	"github.com/adonwheels/identity-api/internal/pkg/config"
)

const appName = "adonwheels-identity"

// App owns every long-lived resource of the process.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	mongo *mongostore.Store
	redis *goredis.Client

	pool     *queue.HashPool
	stopPool context.CancelFunc

	echo *echo.Echo
}

// New connects to MongoDB and Redis, ensures the unique email indexes and
// builds the HTTP router. Resources opened before a failure are released.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	a.mongo, err = mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  appName,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	repo := mongostore.NewAccountRepository(a.mongo.Database())
	if err = repo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	a.redis, err = redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	poolCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.pool = queue.NewHashPool(cfg.Auth.HashWorkers, cfg.Auth.BcryptCost, log)
	a.pool.Start(poolCtx)
	a.stopPool = stop

	tokens := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	reservations := redisstore.NewEmailReservation(a.redis, cfg.Auth.ReservationTTL)
	identity := service.NewIdentityService(repo, reservations, a.pool, tokens, log)
	if err = identity.PrepareDummyHash(ctx); err != nil {
		return nil, err
	}

	a.echo = api.NewRouter(api.RouterDeps{
		Identity: identity,
		Log:      log,
		Checks: map[string]handler.PingFunc{
			"mongodb": a.mongo.Ping,
			"redis":   func(ctx context.Context) error { return a.redis.Ping(ctx).Err() },
		},
	})

	return a, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler { return a.echo }

// Run serves HTTP until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	addr := ":" + a.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Str("env", a.cfg.Env).Msg("http server listening")
		errCh <- a.echo.Start(addr)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}

// Close drains in-flight requests, stops the hashing workers and
// disconnects from Redis and MongoDB.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.echo != nil {
		if err := a.echo.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.stopPool != nil {
		a.stopPool()
		a.pool.Wait()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo disconnect: %w", err))
		}
	}
	return errors.Join(errs...)
}
