package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"

	"patient-monitor/internal/logging"
)

const defaultShutdownTimeout = 10 * time.Second

// Options describes how the gRPC server is started.
type Options struct {
	// Address the server listens on, for example ":50051". Ignored when Listener is set.
	Address string
	// Listener overrides Address.
	Listener net.Listener
	// ShutdownTimeout bounds the graceful stop.
	ShutdownTimeout time.Duration
	// Registerer receives the gRPC metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// Server wraps the vitals gRPC server and owns its lifecycle.
type Server struct {
	logger          *logging.Logger
	grpcServer      *grpc.Server
	listener        net.Listener
	shutdownTimeout time.Duration
}

// NewServer creates a gRPC server with logging and metrics interceptors.
func NewServer(logger *logging.Logger, service VitalsServiceServer, opts Options) (*Server, error) {
	if service == nil {
		return nil, errors.New("vitals service is required")
	}

	listener := opts.Listener
	if listener == nil {
		if opts.Address == "" {
			return nil, errors.New("address is required")
		}
		l, err := net.Listen("tcp", opts.Address)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", opts.Address, err)
		}
		listener = l
	}

	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	unary := []grpc.UnaryServerInterceptor{loggingUnaryInterceptor(logger)}

	var metrics *grpc_prometheus.ServerMetrics
	if opts.Registerer != nil {
		metrics = grpc_prometheus.NewServerMetrics()
		if err := opts.Registerer.Register(metrics); err != nil {
			var alreadyRegistered prometheus.AlreadyRegisteredError
			if !errors.As(err, &alreadyRegistered) {
				_ = listener.Close()
				return nil, fmt.Errorf("register metrics: %w", err)
			}
			existing, ok := alreadyRegistered.ExistingCollector.(*grpc_prometheus.ServerMetrics)
			if !ok {
				_ = listener.Close()
				return nil, fmt.Errorf("register metrics: %w", err)
			}
			metrics = existing
		}
		unary = append(unary, metrics.UnaryServerInterceptor())
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(unary...))
	RegisterVitalsServiceServer(server, service)
	if metrics != nil {
		metrics.InitializeMetrics(server)
	}

	return &Server{
		logger:          logger,
		grpcServer:      server,
		listener:        listener,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Addr reports the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the gRPC server until ctx is cancelled, then stops it gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is not initialized")
	}
	defer s.listener.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(s.listener)
	}()

	s.logger.Info("gRPC server started", "address", s.listener.Addr().String())

	select {
	case <-ctx.Done():
		s.logger.Info("gRPC server shutdown initiated")
		shutdownErr := s.shutdown()
		serveErr := <-errCh
		if errors.Is(serveErr, grpc.ErrServerStopped) {
			serveErr = nil
		}
		if serveErr != nil && shutdownErr == nil {
			shutdownErr = serveErr
		}
		return shutdownErr
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

func (s *Server) shutdown() error {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped gracefully")
		return nil
	case <-time.After(s.shutdownTimeout):
		s.logger.Warn("gRPC server graceful shutdown timed out, forcing stop", "timeout", s.shutdownTimeout.String())
		s.grpcServer.Stop()
		return fmt.Errorf("graceful shutdown exceeded %s", s.shutdownTimeout)
	}
}

func loggingUnaryInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		fields := []any{"method", info.FullMethod, "duration", time.Since(start)}
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			fields = append(fields, "peer", p.Addr.String())
		}
		if err != nil {
			logger.Warn("gRPC unary call completed", logging.AttachError(err, fields...)...)
		} else {
			logger.Debug("gRPC unary call completed", fields...)
		}

		return resp, err
	}
}
