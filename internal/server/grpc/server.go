// Package grpc is the transport boundary of the server: the NoteKeeper
// service descriptor, the interceptor pipeline and the request handlers.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/notekeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"google.golang.org/grpc"
)

// Dependencies are the collaborators of GRPCServer. Activity receives one
// entry per authenticated call.
type Dependencies struct {
	Authenticator *services.Authenticator
	Access        *services.AccessController
	Records       *services.RecordService
	Limiter       ratelimit.Limiter
	Metrics       *metrics.Metrics
	Activity      logging.Logger
}

type GRPCServer struct {
	address  string
	logger   logging.Logger
	activity logging.Logger
	authn    *services.Authenticator
	access   *services.AccessController
	records  *services.RecordService
	limiter  ratelimit.Limiter
	metrics  *metrics.Metrics
}

func NewGRPCServer(address string, l logging.Logger, d Dependencies) *GRPCServer {
	s := &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		activity: d.Activity,
		authn:    d.Authenticator,
		access:   d.Access,
		records:  d.Records,
		limiter:  d.Limiter,
		metrics:  d.Metrics,
	}
	if s.activity == nil {
		s.activity = s.logger
	}
	if s.limiter == nil {
		s.limiter = ratelimit.Noop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.metricsInterceptor,
		s.rateLimitInterceptor,
		s.authenticateInterceptor,
		s.authorizeInterceptor,
		s.activityInterceptor,
	))
	RegisterNoteKeeperServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
