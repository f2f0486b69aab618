package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophfeed/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Authenticator resolves an authorization value to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (int64, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// GRPCServer is the operations endpoint: the standard health service, with
// the authentication gate chained in front of every non-public method.
type GRPCServer struct {
	address      string
	logger       logging.Logger
	gate         Authenticator
	db           Pinger
	pingInterval time.Duration
	health       *health.Server
}

func NewGRPCServer(a string, l logging.Logger, gate Authenticator, db Pinger, pingInterval time.Duration) *GRPCServer {
	if pingInterval <= 0 {
		pingInterval = 10 * time.Second
	}
	return &GRPCServer{
		address:      a,
		logger:       l.With("module", "grpc_server"),
		gate:         gate,
		db:           db,
		pingInterval: pingInterval,
		health:       health.NewServer(),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.authInterceptor))

	// registers service
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gPRC server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-ticker.C:
				s.probe(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	// Serve returns once GracefulStop closes the listener; wait for pending RPCs.
	<-stopped
	return nil
}

// probe sets the overall serving status from a database ping.
func (s *GRPCServer) probe(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(pingCtx); err != nil {
			s.logger.Warn(ctx, "database ping failed", "error", err)
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", st)
}
