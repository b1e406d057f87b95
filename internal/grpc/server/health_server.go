// Package server реализует gRPC-сервер проверки состояния сервиса.
//
// HealthServer отдаёт стандартный сервис grpc.health.v1 и периодически
// сверяет его статус с доступностью базы данных.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// ServiceName — имя сервиса в ответах grpc.health.v1.
const ServiceName = "account.v1.AccountService"

const pingTimeout = 2 * time.Second

// Pinger проверяет доступность базы данных.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer публикует статус сервиса по gRPC.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	db         Pinger
	interval   time.Duration
	log        *slog.Logger
}

// NewHealthServer создает HealthServer. Статус до первой проверки — NOT_SERVING.
func NewHealthServer(db Pinger, interval time.Duration, logger *slog.Logger) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &HealthServer{
		grpcServer: grpcServer,
		health:     hs,
		db:         db,
		interval:   interval,
		log:        logger,
	}
}

// Check пингует базу и выставляет соответствующий статус.
func (s *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	const op = "grpc.server.Check"

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("database ping failed", slog.String("op", op), sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Monitor повторяет Check с заданным интервалом до отмены ctx.
func (s *HealthServer) Monitor(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Serve обслуживает запросы на готовом listener до отмены ctx.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	const op = "grpc.server.Serve"

	ctx, cancel := context.WithCancel(ctx)
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		s.Monitor(ctx)
	}()
	defer func() {
		cancel()
		<-monitorDone
	}()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health service listening on", slog.String("address", lis.Addr().String()))
		errCh <- s.grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
}

// Run слушает address и вызывает Serve.
func (s *HealthServer) Run(ctx context.Context, address string) error {
	const op = "grpc.server.Run"

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.Serve(ctx, lis)
}
