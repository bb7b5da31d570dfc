package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sync/errgroup"

	grpcapi "patient-monitor/internal/api/grpc"
	httpapi "patient-monitor/internal/api/http"
	"patient-monitor/internal/application/ingest"
	"patient-monitor/internal/config"
	"patient-monitor/internal/logging"
)

// App runs the ingestion server and the query transports as one process.
type App struct {
	config          *config.Config
	logger          *logging.Logger
	shutdownManager *ShutdownManager
	ingest          *ingest.Server
	http            *httpapi.Server
	grpc            *grpcapi.Server

	ready      chan struct{}
	ingestAddr net.Addr
	httpAddr   net.Addr
}

// New creates a new App. grpcServer may be nil when the gRPC transport is disabled.
func New(
	cfg *config.Config,
	logger *logging.Logger,
	shutdownManager *ShutdownManager,
	ingestServer *ingest.Server,
	httpServer *httpapi.Server,
	grpcServer *grpcapi.Server,
) *App {
	return &App{
		config:          cfg,
		logger:          logger,
		shutdownManager: shutdownManager,
		ingest:          ingestServer,
		http:            httpServer,
		grpc:            grpcServer,
		ready:           make(chan struct{}),
	}
}

// Ready is closed once every listener is bound.
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// IngestAddr is valid after Ready is closed.
func (a *App) IngestAddr() net.Addr {
	return a.ingestAddr
}

// HTTPAddr is valid after Ready is closed.
func (a *App) HTTPAddr() net.Addr {
	return a.httpAddr
}

// GRPCAddr returns nil when gRPC is disabled.
func (a *App) GRPCAddr() net.Addr {
	if a.grpc == nil {
		return nil
	}
	return a.grpc.Addr()
}

// Run binds the ingestion port and serves until ctx is cancelled or a
// shutdown signal arrives. A bind failure is returned as is and is fatal.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting vitals service",
		"ingestHost", a.config.Ingest.Host,
		"ingestPort", a.config.Ingest.Port,
		"httpPort", a.config.HTTPPort,
		"grpcPort", a.config.GRPCPort,
	)

	runCtx, cancel := a.shutdownManager.WithContext(ctx)
	defer cancel()
	defer a.shutdownManager.Close()

	ingestAddr, err := a.ingest.Start(runCtx)
	if err != nil {
		return fmt.Errorf("start ingestion server: %w", err)
	}

	httpListener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(a.config.HTTPPort)))
	if err != nil {
		a.stopIngest()
		return fmt.Errorf("listen http: %w", err)
	}

	a.ingestAddr = ingestAddr
	a.httpAddr = httpListener.Addr()
	close(a.ready)

	a.logger.Info("ingestion server listening", "address", ingestAddr.String())

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return a.http.Serve(gctx, httpListener, a.shutdownManager.Timeout())
	})
	if a.grpc != nil {
		g.Go(func() error {
			return a.grpc.Serve(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown initiated")
		return a.stopIngest()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("shutdown completed")
	return nil
}

func (a *App) stopIngest() error {
	cleanupCtx, cleanupCancel := a.shutdownManager.CleanupContext()
	defer cleanupCancel()

	if err := a.ingest.Shutdown(cleanupCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("shutdown deadline exceeded", "timeout", a.shutdownManager.Timeout().String())
		}
		return fmt.Errorf("stop ingestion server: %w", err)
	}
	return nil
}
