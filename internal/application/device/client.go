// Package device implements the simulated bedside device that streams vitals
// to the ingestion server over a persistent TCP connection.
package device

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"patient-monitor/internal/domain"
	"patient-monitor/internal/logging"
	"patient-monitor/internal/wire"
)

const (
	defaultRetryBackoff = 5 * time.Second
	defaultDialTimeout  = 5 * time.Second
)

var errSourceClosed = errors.New("reading source closed")

// Source emits readings until ctx is cancelled and then closes out.
type Source interface {
	Run(ctx context.Context, out chan<- domain.Reading)
}

// Config describes where and how the client connects.
type Config struct {
	Addr         string
	RetryBackoff time.Duration
	DialTimeout  time.Duration
}

// Client keeps a connection to the ingestion server open and writes every
// reading from its source as one frame. Connection failures are retried forever.
type Client struct {
	cfg    Config
	source Source
	logger *logging.Logger
}

// New constructs a client.
func New(cfg Config, source Source, logger *logging.Logger) *Client {
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	return &Client{cfg: cfg, source: source, logger: logger.With("addr", cfg.Addr)}
}

// Run streams readings until ctx is cancelled. It returns nil on cancellation.
func (c *Client) Run(ctx context.Context) error {
	if c.source == nil {
		return errors.New("reading source is required")
	}

	readings := make(chan domain.Reading)
	go c.source.Run(ctx, readings)

	for {
		err := c.session(ctx, readings)
		if ctx.Err() != nil {
			c.logger.Info("device client stopped")
			return nil
		}
		if errors.Is(err, errSourceClosed) {
			return err
		}

		c.logger.Warn("connection lost, retrying", logging.AttachError(err, "retry_in", c.cfg.RetryBackoff.String())...)

		select {
		case <-ctx.Done():
			c.logger.Info("device client stopped")
			return nil
		case <-time.After(c.cfg.RetryBackoff):
		}
	}
}

// session dials once and writes readings until the connection fails.
func (c *Client) session(ctx context.Context, readings <-chan domain.Reading) error {
	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.Addr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c.logger.Info("connected to ingestion server", "local", conn.LocalAddr().String())

	encoder := wire.NewEncoder(conn)
	for reading := range readings {
		if err := encoder.Encode(reading); err != nil {
			return fmt.Errorf("send reading for device %d: %w", reading.DeviceID, err)
		}
		c.logger.Debug("reading sent", "device_id", reading.DeviceID)
	}

	return errSourceClosed
}
