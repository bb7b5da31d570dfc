package ingest

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"patient-monitor/internal/domain"
	"patient-monitor/internal/infrastructure/repository/memory"
	"patient-monitor/internal/logging"
	"patient-monitor/internal/wire"
)

// State is the lifecycle state of a device connection.
type State int

const (
	StateActive State = iota
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// connection is owned by exactly one handler goroutine.
type connection struct {
	id        string
	conn      net.Conn
	state     State
	closeOnce sync.Once
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}

// handle decodes frames from c until EOF, a bad frame, a read error or
// cancellation of ctx, merging every reading into store. It always closes the
// connection and removes it from the active set before returning.
func (s *Server) handle(ctx context.Context, c *connection, store *memory.Store) {
	logger := s.logger.With("conn_id", c.id, "remote", c.conn.RemoteAddr().String())

	s.metrics.ConnectionOpened()
	stop := context.AfterFunc(ctx, c.close)
	defer func() {
		stop()
		c.close()
		c.state = StateClosed
		store.Untrack(c.id)
		s.metrics.ConnectionClosed()
		logger.Info("connection closed", "state", c.state.String())
	}()

	logger.Info("connection accepted")

	decoder := wire.NewDecoder(c.conn, s.cfg.MaxFrameBytes)
	for {
		reading, err := decoder.Next()
		if err != nil {
			s.logTermination(ctx, logger, err)
			return
		}

		store.Upsert(reading)
		s.metrics.ReadingStored(store.Len())
		logger.Debug("reading stored", "device_id", reading.DeviceID)
	}
}

func (s *Server) logTermination(ctx context.Context, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, io.EOF):
		logger.Info("peer closed connection")
	case ctx.Err() != nil:
		logger.Info("connection closed for shutdown")
	case errors.Is(err, domain.ErrDecode):
		s.metrics.DecodeFailed()
		logger.Warn("rejected malformed frame", logging.AttachError(err)...)
	default:
		s.metrics.ConnectionFailed()
		logger.Warn("connection read failed", logging.AttachError(err)...)
	}
}
