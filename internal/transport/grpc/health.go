// Package grpc serves the gRPC health checking protocol for the catalog so
// orchestrators can probe it without going through HTTP.
package grpc

import (
	"errors"
	"net"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name health checks report on besides the overall "" service.
const ServiceName = "productcatalog.ProductService"

type HealthServer struct {
	log    hclog.Logger
	server *grpc.Server
	health *health.Server
}

func NewHealthServer(log hclog.Logger) *HealthServer {
	gs := grpc.NewServer()
	hs := health.NewServer()

	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &HealthServer{log: log, server: gs, health: hs}
}

// Serve blocks until the listener fails or Shutdown is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server is running", "address", lis.Addr().String())

	err := s.server.Serve(lis)
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown reports NOT_SERVING to watchers and then stops the server gracefully.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
	s.server.GracefulStop()
	s.log.Info("gRPC health server stopped")
}
