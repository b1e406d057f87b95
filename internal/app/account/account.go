// Package account собирает HTTP-приложение сервиса учётных записей.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/events"
	healthserver "github.com/magabrotheeeer/account-service/internal/grpc/server"
	"github.com/magabrotheeeer/account-service/internal/http/metrics"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/migrations"
	accountservice "github.com/magabrotheeeer/account-service/internal/services/account"
	"github.com/magabrotheeeer/account-service/internal/storage"
)

const (
	shutdownTimeout       = 15 * time.Second
	healthCheckInterval   = 10 * time.Second
	rabbitConnectRetries  = 5
	rabbitConnectInterval = 2 * time.Second
)

type App struct {
	server       *http.Server
	healthServer *healthserver.HealthServer
	healthAddr   string
	logger       *slog.Logger
	db           *storage.Storage
	redis        *cache.Cache
	publisher    *events.RabbitPublisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.account.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
	}

	var profileCache accountservice.ProfileCache = cache.Noop{}
	if cfg.RedisAddress != "" {
		app.redis, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		profileCache = app.redis
		logger.Info("profile cache enabled", slog.String("address", cfg.RedisAddress))
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		conn, err := events.Connect(ctx, cfg.RabbitMQURL, rabbitConnectRetries, rabbitConnectInterval)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.publisher, err = events.NewRabbitPublisher(conn, cfg.EventsExchange)
		if err != nil {
			conn.Close()
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = app.publisher
		logger.Info("account events enabled", slog.String("exchange", cfg.EventsExchange))
	}

	service := accountservice.NewService(db, jwt.NewMaker(cfg.JWTSecretKey), profileCache, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, RouteDeps{
		Logger:         logger,
		Service:        service,
		DB:             db,
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if cfg.GRPCHealthAddress != "" {
		app.healthServer = healthserver.NewHealthServer(db, healthCheckInterval, logger)
		app.healthAddr = cfg.GRPCHealthAddress
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	healthDone := make(chan struct{})
	if a.healthServer != nil {
		go func() {
			defer close(healthDone)
			if err := a.healthServer.Run(ctx, a.healthAddr); err != nil {
				errCh <- err
			}
		}()
	} else {
		close(healthDone)
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	// gRPC health и его пинги базы должны остановиться до закрытия пула.
	stop()
	<-healthDone

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	a.close()
	return runErr
}

// close освобождает внешние ресурсы. Ошибки только логируются.
func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq publisher", sl.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
