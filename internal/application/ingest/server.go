// Package ingest runs the TCP ingestion side of the service: it binds the
// listener, accepts device connections and runs one handler per connection.
package ingest

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"patient-monitor/internal/domain"
	"patient-monitor/internal/infrastructure/metrics"
	"patient-monitor/internal/infrastructure/repository/memory"
	"patient-monitor/internal/logging"
)

var (
	errNoCandidates   = errors.New("no candidate ports")
	errAlreadyStarted = errors.New("ingest server already started")
)

// Config describes the ingestion server.
type Config struct {
	Bind           BindConfig
	MaxConnections int
	MaxFrameBytes  int
}

// Server owns the shared reading store and the active connection set.
type Server struct {
	cfg     Config
	logger  *logging.Logger
	metrics *metrics.Metrics

	store    atomic.Pointer[memory.Store]
	started  atomic.Bool
	listener net.Listener

	handlers   sync.WaitGroup
	acceptDone chan struct{}
}

// NewServer creates a server. The store does not exist until Start succeeds.
func NewServer(cfg Config, logger *logging.Logger, m *metrics.Metrics) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		acceptDone: make(chan struct{}),
	}
}

// Start binds the ingestion listener, creates the store and launches the
// accept loop. The loop and every handler stop when ctx is cancelled or
// Shutdown is called.
func (s *Server) Start(ctx context.Context) (net.Addr, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, errAlreadyStarted
	}

	listener, err := Bind(ctx, s.cfg.Bind, s.logger, s.metrics)
	if err != nil {
		return nil, err
	}

	store := memory.New(s.cfg.MaxConnections)
	s.listener = listener
	s.store.Store(store)

	go s.acceptLoop(ctx, listener, store)

	return listener.Addr(), nil
}

// Store returns the reading store, or nil before Start has succeeded.
func (s *Server) Store() domain.ReadingReader {
	store := s.store.Load()
	if store == nil {
		return nil
	}
	return store
}

// ActiveConnections reports the size of the active connection set.
func (s *Server) ActiveConnections() int {
	store := s.store.Load()
	if store == nil {
		return 0
	}
	return store.ActiveConnections()
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener, store *memory.Store) {
	defer close(s.acceptDone)

	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	var tempDelay time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info("accept loop stopped")
				return
			}

			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if tempDelay > time.Second {
				tempDelay = time.Second
			}
			s.logger.Warn("accept failed", logging.AttachError(err, "retry_in", tempDelay.String())...)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0

		c := &connection{id: uuid.NewString(), conn: conn, state: StateActive}
		if err := store.Track(c.id, conn); err != nil {
			s.metrics.ConnectionRejected()
			s.logger.Warn("connection rejected", logging.AttachError(err, "remote", conn.RemoteAddr().String())...)
			_ = conn.Close()
			continue
		}

		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			s.handle(ctx, c, store)
		}()
	}
}

// Shutdown stops accepting, closes every active connection and waits for the
// handlers to return or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}

	_ = s.listener.Close()

	select {
	case <-s.acceptDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	if store := s.store.Load(); store != nil {
		store.CloseAll()
	}

	done := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
