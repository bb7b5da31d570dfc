package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/handlers"

	"patient-monitor/internal/domain"
	"patient-monitor/internal/infrastructure/metrics"
	"patient-monitor/internal/logging"
)

const (
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

// Server exposes the HTTP transport for the vitals query service.
type Server struct {
	handler http.Handler
	logger  *logging.Logger
}

// NewServer constructs a chi based HTTP server that forwards requests to the
// snapshot service. A nil metrics value disables instrumentation and /metrics.
func NewServer(service domain.SnapshotService, logger *logging.Logger, m *metrics.Metrics) *Server {
	router := chi.NewRouter()

	router.Use(m.HTTPMiddleware(func(r *http.Request) string {
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				return pattern
			}
		}
		return r.URL.Path
	}))

	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}
	registerRoutes(router, &handler{service: service, logger: logger}, metricsHandler)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
	)

	return &Server{
		handler: handlers.RecoveryHandler()(cors(router)),
		logger:  logger,
	}
}

// Router returns the configured handler for reuse in tests or external HTTP servers.
func (s *Server) Router() http.Handler {
	return s.handler
}

// ServeHTTP allows Server to satisfy the http.Handler interface directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Serve accepts requests on listener until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) Serve(ctx context.Context, listener net.Listener, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	s.logger.Info("HTTP server started", "address", listener.Addr().String())

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.logger.Info("HTTP server stopped gracefully")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
