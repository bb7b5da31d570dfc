package ingest

import (
	"context"
	"net"
	"strconv"
	"time"

	"patient-monitor/internal/domain"
	"patient-monitor/internal/infrastructure/metrics"
	"patient-monitor/internal/logging"
)

const maxPort = 65535

// BindConfig describes where the ingestion listener should bind and how hard
// it should try.
type BindConfig struct {
	Host     string
	Port     int
	Attempts int
	Backoff  time.Duration
}

// CandidateAddresses lists the addresses Bind will try, in order: the
// configured port followed by the next Attempts-1 ports. Port 0 asks the
// kernel for any free port and yields a single candidate.
func CandidateAddresses(host string, port, attempts int) []string {
	if attempts < 1 {
		attempts = 1
	}
	if port == 0 {
		return []string{net.JoinHostPort(host, "0")}
	}

	candidates := make([]string, 0, attempts)
	for i := 0; i < attempts && port+i <= maxPort; i++ {
		candidates = append(candidates, net.JoinHostPort(host, strconv.Itoa(port+i)))
	}
	return candidates
}

// Bind tries every candidate address, waiting cfg.Backoff between failures,
// and returns the first listener that binds. When all candidates fail it
// returns a *domain.BindError.
func Bind(ctx context.Context, cfg BindConfig, logger *logging.Logger, m *metrics.Metrics) (net.Listener, error) {
	candidates := CandidateAddresses(cfg.Host, cfg.Port, cfg.Attempts)
	if len(candidates) == 0 {
		return nil, &domain.BindError{Address: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), Err: errNoCandidates}
	}

	var lc net.ListenConfig
	var lastErr error

	for attempt, address := range candidates {
		m.BindAttempted()

		listener, err := lc.Listen(ctx, "tcp", address)
		if err == nil {
			logger.Info("ingestion listener bound", "address", listener.Addr().String(), "attempt", attempt+1)
			return listener, nil
		}
		lastErr = err

		logger.Warn("bind attempt failed", logging.AttachError(err, "address", address, "attempt", attempt+1)...)

		if attempt == len(candidates)-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, &domain.BindError{Address: address, Attempts: attempt + 1, Err: ctx.Err()}
		case <-time.After(cfg.Backoff):
		}
	}

	return nil, &domain.BindError{
		Address:  candidates[len(candidates)-1],
		Attempts: len(candidates),
		Err:      lastErr,
	}
}
