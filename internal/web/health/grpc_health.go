package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sonuudigital/lovecakes/internal/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const probeTimeout = 5 * time.Second

type CheckFunc func(ctx context.Context) error

// Server exposes the standard gRPC health protocol for one service name,
// flipping to SERVING only while every dependency check passes.
type Server struct {
	service    string
	check      CheckFunc
	interval   time.Duration
	grpcServer *grpc.Server
	health     *health.Server
	logger     logs.Logger
}

func NewServer(service string, check CheckFunc, interval time.Duration, logger logs.Logger) *Server {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Server{
		service:    service,
		check:      check,
		interval:   interval,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}
}

func (s *Server) Probe(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.check(ctx); err != nil {
		s.logger.Error("service is not healthy", "service", s.service, "error", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(s.service, status)
	return status
}

// Serve blocks until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context, port string) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC health: %w", err)
	}

	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	}()

	s.logger.Info("gRPC health server listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

func (s *Server) watch(ctx context.Context) {
	s.Probe(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) HealthServer() grpc_health_v1.HealthServer {
	return s.health
}
