// Package grpc serves the standard grpc.health.v1 service. The reported
// status follows the reachability of the database and the content store.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported alongside the overall ("") one.
const ServiceName = "filesmanager"

// Prober reports backend reachability.
type Prober interface {
	Status(ctx context.Context) services.Health
}

type HealthServer struct {
	address  string
	prober   Prober
	interval time.Duration
	health   *health.Server
	logger   logging.Logger
}

func NewHealthServer(a string, p Prober, interval time.Duration, l logging.Logger) *HealthServer {
	return &HealthServer{
		address:  a,
		prober:   p,
		interval: interval,
		health:   health.NewServer(),
		logger:   l,
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *HealthServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)

	s.refresh(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// refresh probes the backends once and publishes the result.
func (s *HealthServer) refresh(ctx context.Context) {
	h := s.prober.Status(ctx)

	status := healthpb.HealthCheckResponse_SERVING
	if !h.DB || !h.Storage {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn(ctx, "backend unreachable", "db", h.DB, "storage", h.Storage)
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
